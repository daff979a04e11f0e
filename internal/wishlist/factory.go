package wishlist

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
)

const (
	maxTitleLength = 120
	maxSlugBase    = 60
	slugSuffixLen  = 6
	fallbackSlug   = "wishlist"
)

// Factory builds unsaved wishlists with unique slugs.
type Factory struct {
	defaultTitle string
	suffix       func() string
}

// NewFactory returns a factory naming default wishlists defaultTitle.
func NewFactory(defaultTitle string) *Factory {
	title := strings.TrimSpace(defaultTitle)
	if title == "" {
		title = "My wishlist"
	}
	return &Factory{defaultTitle: title, suffix: randomSuffix}
}

// CreateDefault builds the wishlist a user gets on first add.
func (f *Factory) CreateDefault(userID uuid.UUID) *models.Wishlist {
	return f.build(userID, f.defaultTitle)
}

// CreateNamed builds a wishlist with a shopper-chosen title.
func (f *Factory) CreateNamed(userID uuid.UUID, title string) (*models.Wishlist, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if len([]rune(title)) > maxTitleLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is too long").
			WithDetails(map[string]any{"max_length": maxTitleLength})
	}
	return f.build(userID, title), nil
}

// Reslug assigns a fresh suffix after a slug collision.
func (f *Factory) Reslug(wishlist *models.Wishlist) {
	wishlist.Slug = Slugify(wishlist.Title) + "-" + f.suffix()
}

func (f *Factory) build(userID uuid.UUID, title string) *models.Wishlist {
	wishlist := &models.Wishlist{UserID: userID, Title: title}
	f.Reslug(wishlist)
	return wishlist
}

// Slugify lowercases title, strips diacritics and joins words with dashes.
func Slugify(title string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(stripMarks, title)
	if err != nil {
		plain = title
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugBase {
		slug = strings.Trim(slug[:maxSlugBase], "-")
	}
	if slug == "" {
		return fallbackSlug
	}
	return slug
}

func randomSuffix() string {
	buf := make([]byte, slugSuffixLen/2)
	if _, err := rand.Read(buf); err != nil {
		return strings.ReplaceAll(uuid.NewString(), "-", "")[:slugSuffixLen]
	}
	return hex.EncodeToString(buf)
}
