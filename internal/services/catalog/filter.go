package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/developia-II/storefront-backend/internal/adapters/repository"
	"github.com/developia-II/storefront-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	paramMinPrice   = "price_0"
	paramMaxPrice   = "price_1"
	paramSortBy     = "sort_by"
	paramAttributes = "attributes"
	defaultSort     = "name"
)

// SortChoices are the accepted sort_by values in display order.
var SortChoices = []FilterChoice{
	{Value: "name", Label: "name ascending"},
	{Value: "-name", Label: "name descending"},
	{Value: "price", Label: "price ascending"},
	{Value: "-price", Label: "price descending"},
	{Value: "updated_at", Label: "last updated ascending"},
	{Value: "-updated_at", Label: "last updated descending"},
}

type FilterChoice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type FilterField struct {
	Name    string         `json:"name"`
	Label   string         `json:"label"`
	Type    string         `json:"type"`
	Choices []FilterChoice `json:"choices,omitempty"`
}

// ProductFilter is the parsed form of a listing query string. When Errors is
// not empty the filter is invalid and must not be run.
type ProductFilter struct {
	MinPrice   *float64
	MaxPrice   *float64
	SortBy     string
	Attributes []repository.AttributeFilter
	Errors     map[string]string
}

func (f ProductFilter) Valid() bool { return len(f.Errors) == 0 }

// Apply copies the filter's constraints onto q.
func (f ProductFilter) Apply(q repository.ProductQuery) repository.ProductQuery {
	q.MinPrice = f.MinPrice
	q.MaxPrice = f.MaxPrice
	q.SortBy = f.SortBy
	q.Attributes = f.Attributes
	return q
}

// ParseProductFilter reads price_0, price_1, sort_by and attributes from values.
// Empty values are ignored.
func ParseProductFilter(values url.Values) ProductFilter {
	f := ProductFilter{SortBy: defaultSort, Errors: map[string]string{}}

	parsePrice := func(key string) *float64 {
		raw := strings.TrimSpace(values.Get(key))
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			f.Errors[key] = "Enter a valid non-negative number."
			return nil
		}
		return &v
	}
	f.MinPrice = parsePrice(paramMinPrice)
	f.MaxPrice = parsePrice(paramMaxPrice)

	if sortBy := strings.TrimSpace(values.Get(paramSortBy)); sortBy != "" {
		if repository.ValidSort(sortBy) {
			f.SortBy = sortBy
		} else {
			f.Errors[paramSortBy] = fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", sortBy)
		}
	}

	for _, raw := range values[paramAttributes] {
		if raw == "" {
			continue
		}
		attrID, valueID, ok := strings.Cut(raw, ":")
		if !ok || !primitive.IsValidObjectID(attrID) || !primitive.IsValidObjectID(valueID) {
			f.Errors[paramAttributes] = fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", raw)
			continue
		}
		f.Attributes = append(f.Attributes, repository.AttributeFilter{AttributeID: attrID, ValueID: valueID})
	}
	return f
}

// FilterFields describes the listing filters: price range, sort order and one
// multiple-choice field per attribute.
func FilterFields(attributes []models.Attribute) []FilterField {
	fields := []FilterField{
		{Name: "price", Label: "Price", Type: "range"},
		{Name: paramSortBy, Label: "Sort by", Type: "choice", Choices: SortChoices},
	}
	for _, attr := range attributes {
		field := FilterField{Name: paramAttributes, Label: attr.Name, Type: "multiple"}
		for _, v := range attr.Values {
			field.Choices = append(field.Choices, FilterChoice{
				Value: attr.ID.Hex() + ":" + v.ID.Hex(),
				Label: v.Name,
			})
		}
		fields = append(fields, field)
	}
	return fields
}

// MatchesAttribute reports whether p or any of its variants maps attrID to valueID.
func MatchesAttribute(p models.Product, attrID, valueID string) bool {
	if p.Attributes[attrID] == valueID {
		return true
	}
	for _, v := range p.Variants {
		if v.Attributes[attrID] == valueID {
			return true
		}
	}
	return false
}
