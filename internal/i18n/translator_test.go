package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestTranslatorMatch(t *testing.T) {
	tr, err := NewTranslator("en")
	require.NoError(t, err)

	require.Equal(t, language.German, tr.Match("de-AT,de;q=0.9,en;q=0.5"))
	require.Equal(t, language.Croatian, tr.Match("hr"))
	require.Equal(t, language.English, tr.Match("fr-FR"))
	require.Equal(t, language.English, tr.Match(""))
	require.Equal(t, language.English, tr.Match(";;;garbage"))
}

func TestTranslatorTranslate(t *testing.T) {
	tr, err := NewTranslator("en")
	require.NoError(t, err)

	require.Equal(t, "Der Artikel wurde von Ihrer Wunschliste entfernt.", tr.Translate(language.German, KeyItemRemoved))
	require.Equal(t, "Ovaj proizvod je već na vašoj listi želja.", tr.Translate(language.Croatian, KeyAlreadyOnWishlist))
	require.Equal(t, "The item has been added to your wishlist.", tr.Translate(language.English, KeyItemAdded))
	require.Equal(t, "unknown.key", tr.Translate(language.English, "unknown.key"))
}

func TestTranslatorUsesContextLocale(t *testing.T) {
	tr, err := NewTranslator("de")
	require.NoError(t, err)

	require.Equal(t, "Dieser Artikel ist bereits auf Ihrer Wunschliste.", tr.T(context.Background(), KeyAlreadyOnWishlist))

	ctx := WithLocale(context.Background(), language.English)
	require.Equal(t, "This item is already on your wishlist.", tr.T(ctx, KeyAlreadyOnWishlist))
}

func TestNewTranslatorRejectsUnknownDefault(t *testing.T) {
	_, err := NewTranslator("fr")
	require.Error(t, err)
	_, err = NewTranslator("not a locale!")
	require.Error(t, err)
}
