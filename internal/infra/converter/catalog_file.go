package converter

import (
	"encoding/json"
	"os"

	"campbook/internal/pkg/errs"
)

// LoadCatalogDoc reads a JSON catalog fixture file.
func LoadCatalogDoc(path string) (CatalogDoc, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return CatalogDoc{}, errs.Wrapf(err, "read catalog fixtures %s", path)
	}
	var doc CatalogDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return CatalogDoc{}, errs.Wrapf(err, "decode catalog fixtures %s", path)
	}
	return doc, nil
}
