// Package console is the interactive text front end over the catalogue services.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/camden-git/photocatalog/models"
	"github.com/camden-git/photocatalog/services"
)

// errExit ends the menu loop
var errExit = errors.New("exit")

// Menu drives the login and catalogue menus over a line-oriented reader.
type Menu struct {
	Access  *services.AccessService
	Catalog *services.CatalogService

	in  *bufio.Reader
	out io.Writer

	// ReadPassword reads a password without echo, bypassing the line reader.
	// When nil, or when input is already buffered, the password is read as a normal line.
	ReadPassword func() (string, error)
}

func NewMenu(access *services.AccessService, catalog *services.CatalogService, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		Access:  access,
		Catalog: catalog,
		in:      bufio.NewReader(in),
		out:     out,
	}
}

func (m *Menu) printf(format string, args ...interface{}) {
	fmt.Fprintf(m.out, format, args...)
}

// prompt prints label and returns the next input line without its line ending
func (m *Menu) prompt(label string) (string, error) {
	m.printf("%s", label)
	line, err := m.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", errExit
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (m *Menu) promptInt(label string) (int, bool, error) {
	line, err := m.prompt(label)
	if err != nil {
		return 0, false, err
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(line))
	return n, convErr == nil, nil
}

func (m *Menu) readPassword() (string, error) {
	// typed-ahead input is already in the buffer; reading the terminal now would skip it
	if m.ReadPassword == nil || m.in.Buffered() > 0 {
		return m.prompt("Password: ")
	}
	m.printf("Password: ")
	password, err := m.ReadPassword()
	m.printf("\n")
	return password, err
}

// Run shows the login menu until the user exits or input ends.
func (m *Menu) Run(ctx context.Context) error {
	err := m.loginLoop(ctx)
	if errors.Is(err, errExit) {
		return nil
	}
	return err
}

func (m *Menu) loginLoop(ctx context.Context) error {
	for {
		m.printf("1. Login\n2. Exit\n")
		choice, ok, err := m.promptInt("Selection: ")
		if err != nil {
			return err
		}
		if !ok {
			m.printf("Try Again!!\n")
			continue
		}

		switch choice {
		case 1:
			username, err := m.prompt("Username: ")
			if err != nil {
				return err
			}
			password, err := m.readPassword()
			if err != nil {
				return err
			}

			userID, err := m.Access.Authenticate(ctx, username, password)
			if errors.Is(err, services.ErrDenied) {
				m.printf("Access Denied!\n")
				continue
			}
			if err != nil {
				m.printf("Error: %v\n", err)
				continue
			}
			return m.catalogLoop(ctx, userID)
		case 2:
			return errExit
		default:
			m.printf("Try Again!!\n")
		}
	}
}

func (m *Menu) catalogLoop(ctx context.Context, userID int) error {
	for {
		m.printf("\n1. Find Photo\n2. Update Photo Details\n3. Album Photo List\n4. Tag Photo\n5. Exit\n\n")
		choice, ok, err := m.promptInt("Your Selection: ")
		if err != nil {
			return err
		}
		if !ok {
			m.printf("Try Again!!\n")
			continue
		}

		switch choice {
		case 1:
			err = m.withPhotoID(ctx, "Photo ID? ", userID, m.displayPhoto)
		case 2:
			err = m.withPhotoID(ctx, "Photo ID? ", userID, m.updatePhotoDetails)
		case 3:
			err = m.albumPhotoList(ctx, userID)
		case 4:
			err = m.withPhotoID(ctx, "What photo ID to tag? ", userID, m.addTag)
		case 5:
			return errExit
		default:
			m.printf("Try Again!!\n")
		}
		if err != nil {
			return err
		}
	}
}

// withPhotoID asks for a photo id and runs action on it. A non-numeric id is reported as not found.
func (m *Menu) withPhotoID(ctx context.Context, label string, userID int, action func(context.Context, int, int) error) error {
	photoID, ok, err := m.promptInt(label)
	if err != nil {
		return err
	}
	if !ok {
		m.printf("\nPhoto not found.\n")
		return nil
	}
	return action(ctx, userID, photoID)
}

// reportPhotoError prints the message for a failed photo lookup or mutation
func (m *Menu) reportPhotoError(err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		m.printf("\nPhoto not found.\n")
	case errors.Is(err, services.ErrAccessDenied):
		m.printf("\nAccess Denied! You do not have access to this photo.\n")
	default:
		m.printf("\nError: %v\n", err)
	}
}

func (m *Menu) displayPhoto(ctx context.Context, userID, photoID int) error {
	details, err := m.Catalog.PhotoDetails(ctx, userID, photoID)
	if err != nil {
		m.reportPhotoError(err)
		return nil
	}

	p := details.Photo
	m.printf("\nFilename: %s\n", p.Filename)
	m.printf("Title: %s\n", p.Title)
	m.printf("Date: %s\n", p.DisplayDate())
	m.printf("Albums: %s\n", strings.Join(details.AlbumNames, ","))
	m.printf("Tags: %s\n", strings.Join(p.Tags, ","))
	return nil
}

func (m *Menu) updatePhotoDetails(ctx context.Context, userID, photoID int) error {
	photo, err := m.Catalog.FindPhoto(ctx, userID, photoID)
	if err != nil {
		m.reportPhotoError(err)
		return nil
	}

	m.printf("Press Enter to reuse existing values.\n")
	newTitle, err := m.prompt(fmt.Sprintf("Enter value for title [%s]: ", photo.Title))
	if err != nil {
		return err
	}
	newDescription, err := m.prompt(fmt.Sprintf("Enter value for description [%s]: ", photo.Description))
	if err != nil {
		return err
	}

	if err := m.Catalog.UpdatePhoto(ctx, userID, photoID, newTitle, newDescription); err != nil {
		m.reportPhotoError(err)
		return nil
	}
	m.printf("\nPhoto updated!\n")
	return nil
}

func (m *Menu) albumPhotoList(ctx context.Context, userID int) error {
	albumName, err := m.prompt("What is the name of the album? ")
	if err != nil {
		return err
	}

	photos, err := m.Catalog.FindAlbumPhotos(ctx, userID, albumName)
	switch {
	case errors.Is(err, services.ErrAlbumNotFound):
		m.printf("\nThere is no album with the name %q\n", albumName)
		return nil
	case err != nil:
		m.printf("\nError: %v\n", err)
		return nil
	case len(photos) == 0:
		m.printf("\nYou do not have access to any of this album's photos\n")
		return nil
	}

	m.printf("\nfilename      resolution      tags\n")
	m.printf("-----------------------------------------\n")
	for _, p := range photos {
		m.printf("%s\n", albumRow(p))
	}
	m.printf("\n--- Note: only the photos you have access to are displayed ---\n")
	return nil
}

func albumRow(p models.Photo) string {
	return fmt.Sprintf("%s   -   %s   -   %s", p.Filename, p.Resolution, strings.Join(p.Tags, ":"))
}

func (m *Menu) addTag(ctx context.Context, userID, photoID int) error {
	photo, err := m.Catalog.FindPhoto(ctx, userID, photoID)
	if err != nil {
		m.reportPhotoError(err)
		return nil
	}

	newTag, err := m.prompt(fmt.Sprintf("What tag would you like to add (%s)? ", strings.Join(photo.Tags, ",")))
	if err != nil {
		return err
	}

	err = m.Catalog.AddTag(ctx, userID, photoID, newTag)
	switch {
	case errors.Is(err, services.ErrAlreadyExists):
		m.printf("Photo '%d' already has the tag '%s'\n", photoID, newTag)
	case err != nil:
		m.reportPhotoError(err)
	default:
		m.printf("\nUpdated!\n")
	}
	return nil
}
