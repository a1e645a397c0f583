package product

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLegacy(t *testing.T, raw string) LegacyProduct {
	t.Helper()
	var l LegacyProduct
	require.NoError(t, json.Unmarshal([]byte(raw), &l))
	return l
}

func TestFromLegacy(t *testing.T) {
	t.Run("StringCountersWithFrontBackImages", func(t *testing.T) {
		l := decodeLegacy(t, `{
			"_id": {"$oid": "64b7f0c2a1e4b3d2c1f0a9e8"},
			"title": " Robe fleurie ",
			"price": "45.5",
			"category": "dress",
			"frontImg": "https://cdn/front.jpg",
			"backImg": "https://cdn/back.jpg",
			"smallQuantity": "3",
			"mediumQuantity": "abc",
			"largeQuantity": "-2",
			"createdAt": {"$date": "2023-07-19T10:00:00Z"}
		}`)

		p, err := FromLegacy(l)
		require.NoError(t, err)
		assert.Equal(t, "Robe fleurie", p.Title)
		assert.Equal(t, Category("robe"), p.Category)
		assert.True(t, decimal.RequireFromString("45.5").Equal(p.Price))
		assert.Equal(t, []Image{
			{ImageURL: "https://cdn/front.jpg", Color: DefaultImageColor},
			{ImageURL: "https://cdn/back.jpg", Color: DefaultImageColor},
		}, p.Images)
		assert.Equal(t, Quantities{S: 3}, p.Quantities)
		assert.Equal(t, time.Date(2023, 7, 19, 10, 0, 0, 0, time.UTC), p.CreatedAt.UTC())
		assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	})

	t.Run("DeterministicIDs", func(t *testing.T) {
		raw := `{"_id": "abc123", "title": "T", "price": 10, "category": "top"}`
		a, err := FromLegacy(decodeLegacy(t, raw))
		require.NoError(t, err)
		b, err := FromLegacy(decodeLegacy(t, raw))
		require.NoError(t, err)

		assert.Equal(t, a.ID, b.ID)
		assert.Equal(t, uuid.NewSHA1(legacyNamespace, []byte("abc123")), a.ID)
	})

	t.Run("CurrentShapePrefersNewCounters", func(t *testing.T) {
		l := decodeLegacy(t, `{
			"_id": "x1",
			"title": "Pull",
			"price": 60,
			"priceAfterSolde": 0,
			"category": "PULL",
			"images": [{"imageUrl": "https://cdn/1.jpg"}, {"imageUrl": "https://cdn/2.jpg", "color": "#fff"}],
			"mediumQuantity": 9,
			"mQuantity": 2,
			"xxxlQuantity": 4,
			"eurQuantities": {"38": "2", "40": -1},
			"createdAt": {"$date": 1689760800000}
		}`)

		p, err := FromLegacy(l)
		require.NoError(t, err)
		assert.Equal(t, Category("pull"), p.Category)
		assert.Nil(t, p.PriceAfterSolde)
		assert.Equal(t, DefaultImageColor, p.Images[0].Color)
		assert.Equal(t, "#fff", p.Images[1].Color)
		assert.Equal(t, 2, p.M)
		assert.Equal(t, 4, p.XXXL)
		assert.Equal(t, map[string]int{"38": 2, "40": 0}, p.EurQuantities)
		assert.Equal(t, time.UnixMilli(1689760800000).UTC(), p.CreatedAt)
	})

	t.Run("Rejects", func(t *testing.T) {
		_, err := FromLegacy(decodeLegacy(t, `{"price": 10, "category": "top"}`))
		assert.ErrorIs(t, err, ErrTitleRequired)

		_, err = FromLegacy(decodeLegacy(t, `{"title": "x", "price": 0, "category": "top"}`))
		assert.ErrorIs(t, err, ErrInvalidPrice)

		_, err = FromLegacy(decodeLegacy(t, `{"title": "x", "price": 5, "category": "socks"}`))
		assert.ErrorContains(t, err, "unknown category")
	})
}
