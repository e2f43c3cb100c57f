package build

import (
	"sort"
	"strings"
)

// BuildArg is one --build-arg NAME=value pair.
type BuildArg struct {
	Name  string
	Value string
}

// String renders the pair as passed to docker.
func (a BuildArg) String() string {
	return a.Name + "=" + a.Value
}

// BuildArgsFromEnv returns one BuildArg per environment entry named
// prefix+NAME, sorted by NAME. Entries with an empty NAME are ignored.
func BuildArgsFromEnv(environ []string, prefix string) []BuildArg {
	seen := make(map[string]int)
	var args []BuildArg
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		name := strings.TrimPrefix(key, prefix)
		if name == "" {
			continue
		}
		// Later duplicates win, matching os.Getenv.
		if i, dup := seen[name]; dup {
			args[i].Value = value
			continue
		}
		seen[name] = len(args)
		args = append(args, BuildArg{Name: name, Value: value})
	}
	sort.Slice(args, func(i, j int) bool { return args[i].Name < args[j].Name })
	return args
}

// Candidate is a cache repository read from a named variable.
type Candidate struct {
	Variable string
	Value    string
}

// CacheCandidates reads the named variables in order, skipping unset and
// blank ones.
func CacheCandidates(lookup func(string) (string, bool), variables []string) []Candidate {
	var out []Candidate
	for _, name := range variables {
		v, ok := lookup(name)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, Candidate{Variable: name, Value: strings.TrimSpace(v)})
	}
	return out
}
