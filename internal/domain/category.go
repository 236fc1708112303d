package domain

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoryMetadata struct {
	Color             string
	DisplayAttributes map[string]string
}

// Category is a node of the category tree. Parent is nil for roots.
type Category struct {
	ID          primitive.ObjectID
	Name        string
	Slug        string
	Description string
	Icon        Asset
	Parent      *primitive.ObjectID
	IsActive    bool
	Order       int
	Metadata    CategoryMetadata
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryDetails are the admin-editable fields of a category.
type CategoryDetails struct {
	Name        string
	Description string
	Parent      *primitive.ObjectID
	IsActive    *bool
	Order       int
	Metadata    CategoryMetadata
}

// NewCategory builds an active category with its slug derived from the name.
func NewCategory(d CategoryDetails, icon Asset, now time.Time) (*Category, error) {
	c := &Category{
		ID:        primitive.NewObjectID(),
		IsActive:  true,
		Icon:      icon,
		CreatedAt: now,
	}
	if err := c.Apply(d, now); err != nil {
		return nil, err
	}
	if c.Icon.URL == "" || c.Icon.PublicID == "" {
		return nil, invalid("icon url and public_id are required")
	}
	return c, nil
}

// Apply sets the editable fields and regenerates the slug.
func (c *Category) Apply(d CategoryDetails, now time.Time) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return invalid("category name is required")
	}
	slug := Slugify(name)
	if slug == "" {
		return invalid("category name must contain letters or digits")
	}
	if d.Parent != nil && *d.Parent == c.ID {
		return invalid("a category cannot be its own parent")
	}
	if d.Order < 0 {
		return invalid("order cannot be negative")
	}

	c.Name = name
	c.Slug = slug
	c.Description = strings.TrimSpace(d.Description)
	c.Parent = d.Parent
	if d.IsActive != nil {
		c.IsActive = *d.IsActive
	}
	c.Order = d.Order
	c.Metadata = d.Metadata
	c.UpdatedAt = now
	return nil
}

// Slugify lowercases s and joins runs of letters and digits with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// CategoryNode is a category with its children, for tree views.
type CategoryNode struct {
	*Category
	Children []*CategoryNode
}

// BuildTree arranges a flat list into root nodes, each level sorted by Order then Name.
// Categories whose parent is missing from the list become roots.
func BuildTree(categories []*Category) []*CategoryNode {
	nodes := make(map[primitive.ObjectID]*CategoryNode, len(categories))
	for _, c := range categories {
		nodes[c.ID] = &CategoryNode{Category: c}
	}

	var roots []*CategoryNode
	for _, c := range categories {
		n := nodes[c.ID]
		if c.Parent != nil {
			if p, ok := nodes[*c.Parent]; ok {
				p.Children = append(p.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*CategoryNode) {
	sort.SliceStable(nodes, func(a, b int) bool { return nodeLess(nodes[a], nodes[b]) })
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

func nodeLess(a, b *CategoryNode) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	return a.Name < b.Name
}
