package domain

import "encoding/json"

// RecKind tags the two shapes recommendation feeds deliver.
type RecKind string

const (
	RecBare    RecKind = "bare"    // the payload was the product itself
	RecWrapped RecKind = "wrapped" // the payload wrapped a product with scoring metadata
)

// RecItem is a normalized recommendation entry. Upstream feeds are
// inconsistent: some return bare products, others wrap the product with a
// score and an explanation. UnmarshalJSON accepts both.
type RecItem struct {
	Kind            RecKind `json:"kind"`
	Product         Product `json:"product"`
	Score           float64 `json:"score,omitempty"`
	Reason          string  `json:"reason,omitempty"`
	ExplanationText string  `json:"explanationText,omitempty"`
}

// recWrapper mirrors the wrapped upstream shape. Some feeds use `product`,
// older ones `productData`.
type recWrapper struct {
	Product         *Product `json:"product"`
	ProductData     *Product `json:"productData"`
	Score           float64  `json:"score"`
	Reason          string   `json:"reason"`
	ExplanationText string   `json:"explanationText"`
}

func (r *RecItem) UnmarshalJSON(data []byte) error {
	var w recWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	switch {
	case w.Product != nil:
		r.Kind = RecWrapped
		r.Product = *w.Product
	case w.ProductData != nil:
		r.Kind = RecWrapped
		r.Product = *w.ProductData
	default:
		// Bare product: decode the same bytes as a Product.
		var p Product
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		r.Kind = RecBare
		r.Product = p
	}

	r.Score = w.Score
	r.Reason = w.Reason
	r.ExplanationText = w.ExplanationText
	r.Product.Normalize()
	return nil
}

// ItemID returns the identity used by the deduplicator.
func (r RecItem) ItemID() string { return r.Product.ID }
