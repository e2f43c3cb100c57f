package build

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// DockerfileInfo is what the plan display needs from a Dockerfile.
type DockerfileInfo struct {
	Stages []Stage
	Args   []string // declared ARG names, in order
}

// Stage describes a single FROM stage in a Dockerfile.
type Stage struct {
	Name      string // alias from "AS name", empty if unnamed
	BaseImage string
	Line      int
}

var (
	// FROM [--platform=...] <image> [AS <name>]
	fromRe = regexp.MustCompile(`(?i)^FROM\s+(?:--platform=\S+\s+)?(\S+)(?:\s+AS\s+(\S+))?`)
	// ARG <name>[=<default>]
	argRe = regexp.MustCompile(`(?i)^ARG\s+([^\s=]+)(?:=.*)?$`)
)

// ParseDockerfile extracts stages and declared build args. Regex-based, not
// a full parser; line continuations are not followed.
func ParseDockerfile(path string) (*DockerfileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info := &DockerfileInfo{}
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if m := fromRe.FindStringSubmatch(line); m != nil {
			info.Stages = append(info.Stages, Stage{BaseImage: m[1], Name: m[2], Line: lineNum})
			continue
		}
		if m := argRe.FindStringSubmatch(line); m != nil {
			info.Args = append(info.Args, m[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return info, nil
}

// predefinedArgs are accepted by docker build without an ARG instruction.
var predefinedArgs = []string{
	"HTTP_PROXY", "http_proxy",
	"HTTPS_PROXY", "https_proxy",
	"FTP_PROXY", "ftp_proxy",
	"NO_PROXY", "no_proxy",
	"ALL_PROXY", "all_proxy",
}

// UndeclaredArgs returns the names in args that no ARG instruction declares.
// Docker ignores such build args.
func (d *DockerfileInfo) UndeclaredArgs(args []BuildArg) []string {
	declared := make(map[string]bool, len(d.Args)+len(predefinedArgs))
	for _, a := range predefinedArgs {
		declared[a] = true
	}
	for _, a := range d.Args {
		declared[a] = true
	}
	var out []string
	for _, a := range args {
		if !declared[a.Name] {
			out = append(out, a.Name)
		}
	}
	return out
}
