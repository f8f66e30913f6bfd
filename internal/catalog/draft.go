package catalog

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/saajjewels/storefront/internal/apperr"
	"github.com/saajjewels/storefront/internal/domain"
)

// PlaceholderImage replaces ephemeral client-side image references
const PlaceholderImage = "/images/placeholder.jpg"

const (
	MsgAllFieldsRequired = "All fields are required"
	MsgInvalidPrices     = "Prices must be valid numbers"
)

// PriceField keeps a price exactly as the client sent it so that presence
// and numeric validity can be reported separately. It accepts JSON numbers,
// JSON strings and form values.
type PriceField struct {
	Raw     string
	Present bool
}

// Price builds a present PriceField from its textual form
func Price(raw string) PriceField {
	return PriceField{Raw: raw, Present: true}
}

// UnmarshalJSON implements json.Unmarshaler. null counts as absent.
func (p *PriceField) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*p = PriceField{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*p = Price(str)
		return nil
	}
	*p = Price(s)
	return nil
}

// UnmarshalParam implements echo.BindUnmarshaler for form and query values
func (p *PriceField) UnmarshalParam(src string) error {
	*p = Price(src)
	return nil
}

func (p PriceField) missing() bool {
	return !p.Present || p.Raw == ""
}

func (p PriceField) float() (float64, bool) {
	v, err := cast.ToFloat64E(strings.TrimSpace(p.Raw))
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Draft is a candidate product record as submitted by a client
type Draft struct {
	Name            string
	OriginalPrice   PriceField
	DiscountedPrice PriceField
	Image           string
	Description     string
	Category        string
}

// ResolveImage picks the image reference to store: an uploaded file URL
// wins, blob: references are swapped for the placeholder, anything else is
// used verbatim.
func ResolveImage(uploadedURL, supplied string) string {
	switch {
	case uploadedURL != "":
		return uploadedURL
	case strings.HasPrefix(supplied, "blob:"):
		return PlaceholderImage
	default:
		return supplied
	}
}

// normalize validates d against the resolved image and returns the fields
// to persist. Nothing is written when it fails.
func (d Draft) normalize(uploadedURL string) (domain.Product, error) {
	image := ResolveImage(uploadedURL, d.Image)
	if d.Name == "" ||
		d.OriginalPrice.missing() ||
		d.DiscountedPrice.missing() ||
		image == "" ||
		d.Description == "" ||
		d.Category == "" {
		return domain.Product{}, apperr.BadRequest(MsgAllFieldsRequired)
	}

	original, ok1 := d.OriginalPrice.float()
	discounted, ok2 := d.DiscountedPrice.float()
	if !ok1 || !ok2 {
		return domain.Product{}, apperr.BadRequest(MsgInvalidPrices)
	}

	return domain.Product{
		Name:            d.Name,
		OriginalPrice:   original,
		DiscountedPrice: discounted,
		Image:           image,
		Description:     d.Description,
		Category:        d.Category,
	}, nil
}
