// Package i18n translates storefront messages and negotiates the request locale.
package i18n

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	KeyItemAdded         = "wishlist.flash.item_added"
	KeyItemRemoved       = "wishlist.flash.item_removed"
	KeyAlreadyOnWishlist = "wishlist.flash.already_on_wishlist"
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		KeyItemAdded:         "The item has been added to your wishlist.",
		KeyItemRemoved:       "The item has been removed from your wishlist.",
		KeyAlreadyOnWishlist: "This item is already on your wishlist.",
	},
	language.German: {
		KeyItemAdded:         "Der Artikel wurde zu Ihrer Wunschliste hinzugefügt.",
		KeyItemRemoved:       "Der Artikel wurde von Ihrer Wunschliste entfernt.",
		KeyAlreadyOnWishlist: "Dieser Artikel ist bereits auf Ihrer Wunschliste.",
	},
	language.Croatian: {
		KeyItemAdded:         "Proizvod je dodan na vašu listu želja.",
		KeyItemRemoved:       "Proizvod je uklonjen s vaše liste želja.",
		KeyAlreadyOnWishlist: "Ovaj proizvod je već na vašoj listi želja.",
	},
}

// Translator resolves message keys against an in-memory catalog.
type Translator struct {
	catalog   *catalog.Builder
	supported []language.Tag
	matcher   language.Matcher
}

// NewTranslator builds the catalog with defaultLocale as the fallback language.
func NewTranslator(defaultLocale string) (*Translator, error) {
	fallback, err := language.Parse(strings.TrimSpace(defaultLocale))
	if err != nil {
		return nil, fmt.Errorf("parse default locale %q: %w", defaultLocale, err)
	}
	if _, ok := translations[fallback]; !ok {
		return nil, fmt.Errorf("no translations for default locale %q", defaultLocale)
	}

	builder := catalog.NewBuilder(catalog.Fallback(fallback))
	supported := []language.Tag{fallback}
	for tag, messages := range translations {
		for key, msg := range messages {
			if err := builder.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("load %s/%s: %w", tag, key, err)
			}
		}
		if tag != fallback {
			supported = append(supported, tag)
		}
	}

	return &Translator{
		catalog:   builder,
		supported: supported,
		matcher:   language.NewMatcher(supported),
	}, nil
}

// Default returns the fallback language.
func (t *Translator) Default() language.Tag {
	return t.supported[0]
}

// Match picks the best supported language for an Accept-Language header.
func (t *Translator) Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return t.Default()
	}
	_, index, confidence := t.matcher.Match(tags...)
	if confidence == language.No {
		return t.Default()
	}
	return t.supported[index]
}

// Translate renders key in tag, falling back to the default language and
// finally to the key itself.
func (t *Translator) Translate(tag language.Tag, key string, args ...any) string {
	printer := message.NewPrinter(tag, message.Catalog(t.catalog))
	return printer.Sprintf(key, args...)
}

type ctxKey struct{}

// WithLocale stores the negotiated language on ctx.
func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, ctxKey{}, tag)
}

// LocaleFrom returns the language stored on ctx, if any.
func LocaleFrom(ctx context.Context) (language.Tag, bool) {
	tag, ok := ctx.Value(ctxKey{}).(language.Tag)
	return tag, ok
}

// T translates key in the language carried by ctx.
func (t *Translator) T(ctx context.Context, key string, args ...any) string {
	tag, ok := LocaleFrom(ctx)
	if !ok {
		tag = t.Default()
	}
	return t.Translate(tag, key, args...)
}
