package usecase

import (
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// wholeOrderGroup names the group formed by a grouped order without a shared group code.
const wholeOrderGroup = "ORDER"

// QuantityLine pairs a proposed quantity with the product rules it is checked against.
type QuantityLine struct {
	Product  model.Product
	Quantity int
}

type quantityGroup struct {
	code     string
	names    []string
	sum      int
	totalMOQ int
}

// ValidateQuantities checks per-line MOQ and stock, then combined group minimums.
// The result lists human-readable violations in line order; an empty slice means valid.
func ValidateQuantities(lines []QuantityLine, grouped bool) []string {
	violations := make([]string, 0)

	for _, line := range lines {
		p := line.Product
		if line.Quantity < p.MOQ {
			violations = append(violations, fmt.Sprintf("%s: quantity must be at least %d", p.Name, p.MOQ))
		}
		if p.Stock != nil && line.Quantity > *p.Stock {
			violations = append(violations, fmt.Sprintf("%s: insufficient stock. Available: %d, Requested: %d", p.Name, *p.Stock, line.Quantity))
		}
	}

	for _, g := range collectGroups(lines, grouped) {
		if g.totalMOQ <= 0 || g.sum >= g.totalMOQ {
			continue
		}
		violations = append(violations, fmt.Sprintf("Group %s (%s): combined quantity %d is below minimum %d, need %d more",
			g.code, strings.Join(g.names, ", "), g.sum, g.totalMOQ, g.totalMOQ-g.sum))
	}

	return violations
}

func collectGroups(lines []QuantityLine, grouped bool) []*quantityGroup {
	var (
		order  []*quantityGroup
		byCode = make(map[string]*quantityGroup)
	)

	for _, line := range lines {
		code := line.Product.GroupCode
		if grouped {
			code = wholeOrderGroup
		}
		if code == "" {
			continue
		}
		g, ok := byCode[code]
		if !ok {
			g = &quantityGroup{code: code}
			byCode[code] = g
			order = append(order, g)
		}
		g.names = append(g.names, line.Product.Name)
		g.sum += line.Quantity
		if line.Product.TotalMOQ > g.totalMOQ {
			g.totalMOQ = line.Product.TotalMOQ
		}
	}

	if grouped && len(order) == 1 {
		if shared := sharedGroupCode(lines); shared != "" {
			order[0].code = shared
		}
	}

	return order
}

func sharedGroupCode(lines []QuantityLine) string {
	var code string
	for i, line := range lines {
		if i == 0 {
			code = line.Product.GroupCode
			continue
		}
		if line.Product.GroupCode != code {
			return ""
		}
	}
	return code
}

// quantityLines merges stored cart items with proposed edits keyed by cart item ID.
func quantityLines(items []model.CartItem, products map[int64]model.Product, edits map[int64]int) ([]QuantityLine, error) {
	lines := make([]QuantityLine, 0, len(items))
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %d of cart item %d: %w", item.ProductID, item.ID, domainErrors.ErrNotFound)
		}
		if product.Name == "" {
			product.Name = item.ProductName
		}
		qty := item.Quantity
		if edited, ok := edits[item.ID]; ok {
			qty = edited
		}
		lines = append(lines, QuantityLine{Product: product, Quantity: qty})
	}
	return lines, nil
}
