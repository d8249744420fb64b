package crafting

import "fmt"

// Domain errors for catalog and snapshot construction

// ErrUnknownCommodity indicates a commodity name is not registered in the index
type ErrUnknownCommodity struct {
	Name        string
	Suggestions []string
}

func (e *ErrUnknownCommodity) Error() string {
	if len(e.Suggestions) > 0 {
		return fmt.Sprintf("unknown commodity: %s (did you mean %v?)", e.Name, e.Suggestions)
	}
	return fmt.Sprintf("unknown commodity: %s", e.Name)
}

// ErrDuplicateCommodity indicates the same name was registered twice
type ErrDuplicateCommodity struct {
	Name string
}

func (e *ErrDuplicateCommodity) Error() string {
	return fmt.Sprintf("duplicate commodity: %s", e.Name)
}

// ErrCommodityOutOfRange indicates a collaborator passed an index outside the catalog
type ErrCommodityOutOfRange struct {
	Commodity Commodity
	Size      int
	Context   string
}

func (e *ErrCommodityOutOfRange) Error() string {
	return fmt.Sprintf("commodity %d out of range [0, %d) in %s", int(e.Commodity), e.Size, e.Context)
}

// ErrInvalidRecipe indicates a recipe that cannot be constructed at all
type ErrInvalidRecipe struct {
	Result Commodity
	Reason string
}

func (e *ErrInvalidRecipe) Error() string {
	return fmt.Sprintf("invalid recipe for commodity %d: %s", int(e.Result), e.Reason)
}

// ErrSnapshotShape indicates the physical stock array does not match the catalog size
type ErrSnapshotShape struct {
	Expected int
	Actual   int
}

func (e *ErrSnapshotShape) Error() string {
	return fmt.Sprintf("snapshot physical stock has %d entries, catalog has %d commodities", e.Actual, e.Expected)
}

// ErrCatalogNotReady indicates a pass was requested before any catalog was installed
type ErrCatalogNotReady struct{}

func (e *ErrCatalogNotReady) Error() string {
	return "no recipe catalog installed"
}

// ErrCatalogNotFound indicates no stored catalog has the given name
type ErrCatalogNotFound struct {
	Name string
}

func (e *ErrCatalogNotFound) Error() string {
	return fmt.Sprintf("catalog not found: %s", e.Name)
}
