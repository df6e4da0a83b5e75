package rebrickable

import (
	"net/url"
	"path"
	"strings"

	perr "brickdump/internal/platform/errors"
)

// InventoryParts is the table that gets split after download
const InventoryParts = "inventory_parts.csv"

// Source pairs an output file name with its download URL
type Source struct {
	Name string
	URL  string
}

// catalog lists the dump files in download order
var catalog = []Source{
	{"themes.csv", "https://cdn.rebrickable.com/media/downloads/themes.csv.gz?1756019520.0531077"},
	{"colors.csv", "https://cdn.rebrickable.com/media/downloads/colors.csv.gz?1756019520.105109"},
	{"part_categories.csv", "https://cdn.rebrickable.com/media/downloads/part_categories.csv.gz?1756019520.1171093"},
	{"parts.csv", "https://cdn.rebrickable.com/media/downloads/parts.csv.gz?1756019521.3171413"},
	{"part_relationships.csv", "https://cdn.rebrickable.com/media/downloads/part_relationships.csv.gz?1756019553.8420033"},
	{"elements.csv", "https://cdn.rebrickable.com/media/downloads/elements.csv.gz?1756019522.7291787"},
	{"sets.csv", "https://cdn.rebrickable.com/media/downloads/sets.csv.gz?1756019524.3252208"},
	{"minifigs.csv", "https://cdn.rebrickable.com/media/downloads/minifigs.csv.gz?1756019524.9572377"},
	{"inventories.csv", "https://cdn.rebrickable.com/media/downloads/inventories.csv.gz?1756019523.5972016"},
	{InventoryParts, "https://cdn.rebrickable.com/media/downloads/inventory_parts.csv.gz?1756019549.4058857"},
	{"inventory_sets.csv", "https://cdn.rebrickable.com/media/downloads/inventory_sets.csv.gz?1756019552.6739724"},
	{"inventory_minifigs.csv", "https://cdn.rebrickable.com/media/downloads/inventory_minifigs.csv.gz?1756019553.305989"},
}

// Sources returns the catalog in download order
func Sources() []Source {
	out := make([]Source, len(catalog))
	copy(out, catalog)
	return out
}

// SourcesAt rebases every catalog URL onto mirror, keeping file name and query
// e.g. http://localhost:8080/dl -> http://localhost:8080/dl/themes.csv.gz?1756...
func SourcesAt(mirror string) ([]Source, error) {
	if strings.TrimSpace(mirror) == "" {
		return Sources(), nil
	}
	base, err := url.Parse(mirror)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, perr.InvalidArgf("rebrickable: mirror %q is not an absolute URL", mirror)
	}
	out := make([]Source, len(catalog))
	for i, s := range catalog {
		u, err := url.Parse(s.URL)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "rebrickable: parse %s", s.URL)
		}
		rebased := *base
		rebased.Path = path.Join("/", base.Path, path.Base(u.Path))
		rebased.RawQuery = u.RawQuery
		out[i] = Source{Name: s.Name, URL: rebased.String()}
	}
	return out, nil
}
