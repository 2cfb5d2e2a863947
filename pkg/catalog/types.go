// Package catalog manages the pledge catalogs each company prices its
// collateral against, the shared item types those catalogs reference,
// and a history row for every price change.
package catalog

import (
	"time"

	"github.com/gadaihub/backoffice/pkg/listquery"
)

// ItemType is a platform-wide classification of collateral.
type ItemType struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Catalog statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Catalog is a company's priced entry for an item type.
type Catalog struct {
	ID         string    `json:"id"`
	CompanyID  string    `json:"companyId"`
	ItemTypeID string    `json:"itemTypeId"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	Unit       string    `json:"unit"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// ItemTypeName is populated when the itemType relation is expanded.
	ItemTypeName *string `json:"itemTypeName,omitempty"`
}

// PriceChange is one entry in a catalog's price history.
type PriceChange struct {
	ID        int64     `json:"id"`
	CatalogID string    `json:"catalogId"`
	Price     float64   `json:"price"`
	ChangedBy *int64    `json:"changedBy,omitempty"`
	ChangedAt time.Time `json:"changedAt"`
}

// CreateItemTypeRequest is the payload for creating an item type.
type CreateItemTypeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateCatalogRequest is the payload for creating a catalog.
type CreateCatalogRequest struct {
	CompanyID  string  `json:"companyId"`
	ItemTypeID string  `json:"itemTypeId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Unit       string  `json:"unit"`
}

// UpdateCatalogRequest is the payload for updating a catalog. A price
// change writes a history row alongside the update.
type UpdateCatalogRequest struct {
	Name   *string  `json:"name"`
	Price  *float64 `json:"price"`
	Unit   *string  `json:"unit"`
	Status *string  `json:"status"`
}

// ItemTypeContract describes how item type list queries map onto SQL.
func ItemTypeContract() *listquery.Contract {
	return &listquery.Contract{
		Table:   "item_types",
		Alias:   "it",
		Columns: []string{"id", "name", "description", "created_at", "updated_at"},
		FilterColumns: map[string]string{
			"name": "name",
		},
		SortColumns: map[string]string{
			"name":      "name",
			"createdAt": "created_at",
		},
		DefaultSort: listquery.Sort{Column: "name"},
	}
}

// Contract describes how catalog list queries map onto SQL.
func Contract() *listquery.Contract {
	return &listquery.Contract{
		Table:   "catalogs",
		Alias:   "c",
		Columns: []string{"id", "company_id", "item_type_id", "name", "price", "unit", "status", "created_at", "updated_at"},
		FilterColumns: map[string]string{
			"companyId":  "company_id",
			"itemTypeId": "item_type_id",
			"status":     "status",
			"unit":       "unit",
		},
		Relations: map[string]listquery.Join{
			"itemType": {
				Table:   "item_types",
				Alias:   "it",
				On:      "it.id = c.item_type_id",
				Columns: []string{"name"},
			},
		},
		SortColumns: map[string]string{
			"name":      "name",
			"price":     "price",
			"createdAt": "created_at",
		},
		DefaultSort: listquery.Sort{Column: "created_at", Desc: true},
	}
}
