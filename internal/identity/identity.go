// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identity computes the stable key that collapses the same work
// reported by different sources into one record.
//
// The key depends only on the normalized title and the first author's last
// name token. Source, URL, date and the remaining authors never affect it.
package identity

import (
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/crypto/blake2b"

	"github.com/pdiddy/docufetch/pkg/types"
)

// separator joins the title and author parts before hashing. It cannot
// appear in either part because normalization keeps only letters, digits
// and single spaces.
const separator = "\x1f"

// Resolve returns the identity key for doc.
func Resolve(doc types.Document) string {
	return Key(doc.Title, doc.Authors)
}

// Key returns the hex-encoded BLAKE2b-256 digest of the normalized title
// and first-author token.
func Key(title string, authors []string) string {
	sum := blake2b.Sum256([]byte(NormalizeTitle(title) + separator + AuthorToken(authors)))
	return hex.EncodeToString(sum[:])
}

// NormalizeTitle lowercases the title, drops every rune that is not a
// letter, digit or space, and collapses whitespace.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// AuthorToken returns the lowercased last whitespace-delimited token of the
// first non-empty author, or "" when there is none.
func AuthorToken(authors []string) string {
	for _, a := range authors {
		fields := strings.Fields(a)
		if len(fields) == 0 {
			continue
		}
		return strings.ToLower(strings.Trim(fields[len(fields)-1], ".,;"))
	}
	return ""
}
