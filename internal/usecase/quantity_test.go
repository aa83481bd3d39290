package usecase

import (
	"strings"
	"testing"

	"github.com/polkiloo/orderdesk/internal/domain/model"
)

func intPtr(v int) *int { return &v }

func TestValidateQuantitiesPerLine(t *testing.T) {
	product := model.Product{Name: "A", MOQ: 5, Stock: intPtr(10)}

	cases := []struct {
		name     string
		qty      int
		expected []string
	}{
		{"below moq", 3, []string{"A: quantity must be at least 5"}},
		{"above stock", 12, []string{"A: insufficient stock. Available: 10, Requested: 12"}},
		{"valid", 7, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateQuantities([]QuantityLine{{Product: product, Quantity: tc.qty}}, false)
			if len(got) != len(tc.expected) {
				t.Fatalf("expected %d violations, got %v", len(tc.expected), got)
			}
			for i := range got {
				if got[i] != tc.expected[i] {
					t.Fatalf("unexpected violation %q, want %q", got[i], tc.expected[i])
				}
			}
		})
	}
}

func TestValidateQuantitiesUnknownStock(t *testing.T) {
	got := ValidateQuantities([]QuantityLine{{Product: model.Product{Name: "A", MOQ: 1}, Quantity: 1000}}, false)
	if len(got) != 0 {
		t.Fatalf("expected no violations without stock, got %v", got)
	}
}

func TestValidateQuantitiesGroupShortfall(t *testing.T) {
	a := model.Product{Name: "A", MOQ: 1, GroupCode: "G1", TotalMOQ: 20}
	b := model.Product{Name: "B", MOQ: 1, GroupCode: "G1", TotalMOQ: 20}

	got := ValidateQuantities([]QuantityLine{{Product: a, Quantity: 8}, {Product: b, Quantity: 9}}, false)
	if len(got) != 1 {
		t.Fatalf("expected one violation, got %v", got)
	}
	want := "Group G1 (A, B): combined quantity 17 is below minimum 20, need 3 more"
	if got[0] != want {
		t.Fatalf("unexpected violation %q", got[0])
	}

	got = ValidateQuantities([]QuantityLine{{Product: a, Quantity: 11}, {Product: b, Quantity: 9}}, false)
	if len(got) != 0 {
		t.Fatalf("expected violation to clear, got %v", got)
	}
}

func TestValidateQuantitiesGroupedOrder(t *testing.T) {
	a := model.Product{Name: "A", MOQ: 1, TotalMOQ: 10}
	b := model.Product{Name: "B", MOQ: 1}

	got := ValidateQuantities([]QuantityLine{{Product: a, Quantity: 3}, {Product: b, Quantity: 4}}, true)
	if len(got) != 1 || !strings.HasPrefix(got[0], "Group ORDER (A, B)") || !strings.HasSuffix(got[0], "need 3 more") {
		t.Fatalf("unexpected violations %v", got)
	}

	got = ValidateQuantities([]QuantityLine{{Product: a, Quantity: 3}, {Product: b, Quantity: 4}}, false)
	if len(got) != 0 {
		t.Fatalf("expected ungrouped lines to skip group check, got %v", got)
	}
}

func TestValidateQuantitiesGroupedOrderKeepsSharedCode(t *testing.T) {
	a := model.Product{Name: "A", GroupCode: "G2", TotalMOQ: 10}
	b := model.Product{Name: "B", GroupCode: "G2", TotalMOQ: 10}

	got := ValidateQuantities([]QuantityLine{{Product: a, Quantity: 1}, {Product: b, Quantity: 1}}, true)
	if len(got) != 1 || !strings.HasPrefix(got[0], "Group G2 (A, B)") {
		t.Fatalf("unexpected violations %v", got)
	}
}

func TestValidateQuantitiesReportsEveryRule(t *testing.T) {
	a := model.Product{Name: "A", MOQ: 5, Stock: intPtr(2), GroupCode: "G", TotalMOQ: 50}
	got := ValidateQuantities([]QuantityLine{{Product: a, Quantity: 3}}, false)
	if len(got) != 3 {
		t.Fatalf("expected three violations, got %v", got)
	}
}

func TestQuantityLinesAppliesEdits(t *testing.T) {
	items := []model.CartItem{
		{ID: 1, ProductID: 10, ProductName: "A", Quantity: 4},
		{ID: 2, ProductID: 11, ProductName: "B", Quantity: 6},
	}
	products := map[int64]model.Product{10: {ID: 10, MOQ: 1}, 11: {ID: 11, Name: "Bee", MOQ: 1}}

	lines, err := quantityLines(items, products, map[int64]int{2: 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines[0].Quantity != 4 || lines[1].Quantity != 9 {
		t.Fatalf("unexpected quantities: %+v", lines)
	}
	if lines[0].Product.Name != "A" || lines[1].Product.Name != "Bee" {
		t.Fatalf("unexpected names: %+v", lines)
	}

	if _, err := quantityLines(items, map[int64]model.Product{}, nil); err == nil {
		t.Fatal("expected error for missing product")
	}
}
