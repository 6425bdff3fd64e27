package build

import (
	"encoding/json"
	"os"
	"slices"

	"github.com/gannonh/kata/internal/errors"
	"github.com/gannonh/kata/pkg/fileutil"
)

// devScripts only work inside the source repository.
var devScripts = []string{
	"prepublishOnly",
	"build",
	"build:plugin",
	"build:npm",
	"build:hooks",
	"test",
	"test:build",
}

// distFilesDrop lists "files" entries that do not exist in the npm tree.
var distFilesDrop = []string{"kata"}

// cleanPackageJSON rewrites the copied package.json without development
// scripts and without files entries missing from the distribution.
// A missing file is left for validation to report.
func cleanPackageJSON(p string) error {
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "reading %s", p)
	}

	var pkg map[string]any
	if err := json.Unmarshal(data, &pkg); err != nil {
		return errors.Wrapf(err, "parsing %s", p)
	}

	if files, ok := pkg["files"].([]any); ok {
		pkg["files"] = slices.DeleteFunc(files, func(v any) bool {
			s, ok := v.(string)
			return ok && slices.Contains(distFilesDrop, s)
		})
	}
	if scripts, ok := pkg["scripts"].(map[string]any); ok {
		for _, name := range devScripts {
			delete(scripts, name)
		}
	}

	return errors.Wrapf(fileutil.AtomicWriteJSON(p, pkg), "writing %s", p)
}
