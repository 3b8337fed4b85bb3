package cli

import (
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/withblock/lang"
	"github.com/ardnew/withblock/pkg"
)

// macrosEnv names the environment variable holding a comma-separated list
// of additional macro names.
const macrosEnv = pkg.EnvPrefix + "MACROS"

// macroDelim separates macro names in [macrosEnv].
const macroDelim = ","

// mergeMacros returns the macro names given by flags followed by those
// listed in env, without duplicates. With neither, it returns
// [lang.DefaultMacro].
func mergeMacros(flags []string, env string) []string {
	merged := mung.Make(
		mung.WithSubjectItems(strings.Split(env, macroDelim)...),
		mung.WithDelim(macroDelim),
		mung.WithPrefixItems(trimAll(flags)...),
		mung.WithFilter(func(s string) bool { return strings.TrimSpace(s) != "" }),
	).String()

	var names []string

	seen := make(map[string]bool)

	for _, name := range strings.Split(merged, macroDelim) {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}

		seen[name] = true
		names = append(names, name)
	}

	if len(names) == 0 {
		return []string{lang.DefaultMacro}
	}

	return names
}

func trimAll(list []string) []string {
	out := make([]string, 0, len(list))

	for _, s := range list {
		out = append(out, strings.TrimSpace(s))
	}

	return out
}
