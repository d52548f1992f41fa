// Package smsbackup reads "SMS Backup & Restore" XML exports and feeds their
// messages through the ingest pipeline.
package smsbackup

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/xmlpath.v2"
)

var (
	smsPath         = xmlpath.MustCompile("/smses/sms")
	addressPath     = xmlpath.MustCompile("@address")
	bodyPath        = xmlpath.MustCompile("@body")
	datePath        = xmlpath.MustCompile("@date")
	typePath        = xmlpath.MustCompile("@type")
	contactNamePath = xmlpath.MustCompile("@contact_name")
)

// TypeInbox is the backup's message type for received messages.
const TypeInbox = 1

// unknownContact is what the backup app writes for senders not in contacts.
const unknownContact = "(Unknown)"

// Entry is one message of a backup.
type Entry struct {
	Address     string
	ContactName string
	Body        string
	// RawDate is the date attribute as written, in epoch milliseconds.
	RawDate    string
	ReceivedAt time.Time
	Type       int
}

// Signature identifies an entry for duplicate suppression within a file.
func (e Entry) Signature() string {
	return fmt.Sprintf("%s|%s|%s", e.RawDate, e.Address, e.Body)
}

// Load parses a backup document. Entries are returned in document order.
// An entry whose date is not an integer is an error.
func Load(r io.Reader) ([]Entry, error) {
	root, err := xmlpath.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SMS backup: %w", err)
	}

	var entries []Entry
	iter := smsPath.Iter(root)
	for i := 0; iter.Next(); i++ {
		node := iter.Node()
		entry := Entry{
			Address: attr(addressPath, node),
			Body:    attr(bodyPath, node),
			RawDate: attr(datePath, node),
			Type:    TypeInbox,
		}
		if name := attr(contactNamePath, node); name != unknownContact {
			entry.ContactName = name
		}
		if raw := attr(typePath, node); raw != "" {
			t, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("sms %d: invalid type %q: %w", i, raw, err)
			}
			entry.Type = t
		}
		ms, err := strconv.ParseInt(entry.RawDate, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("sms %d: invalid date %q: %w", i, entry.RawDate, err)
		}
		entry.ReceivedAt = time.UnixMilli(ms).UTC()
		entries = append(entries, entry)
	}
	return entries, nil
}

// LoadFile parses the backup at path.
func LoadFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SMS backup: %w", err)
	}
	defer func() { _ = file.Close() }()
	return Load(file)
}

func attr(path *xmlpath.Path, node *xmlpath.Node) string {
	value, _ := path.String(node)
	return strings.TrimSpace(value)
}
