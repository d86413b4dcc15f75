package commands

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dotcommander/pai/internal/app"
	"github.com/dotcommander/pai/internal/commands/hookcmd"
	"github.com/dotcommander/pai/internal/store"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show pai installation status and memory overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDefaultStatus(cmd, check)
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Open the event archive and report its schema version")
	return cmd
}

type rootInfo struct {
	Path   string `json:"path"`
	Source string `json:"source"`
	Exists bool   `json:"exists"`
}

type hooksInfo struct {
	Installed bool            `json:"installed"`
	Events    map[string]bool `json:"events"`
	Settings  []string        `json:"settings_paths,omitempty"`
}

type archiveInfo struct {
	Path          string `json:"path"`
	Exists        bool   `json:"exists"`
	SizeBytes     *int64 `json:"size_bytes,omitempty"`
	SchemaVersion *int64 `json:"schema_version,omitempty"`
	Error         string `json:"error,omitempty"`
}

type statusResponse struct {
	Root         rootInfo    `json:"root"`
	TimeZone     string      `json:"time_zone"`
	RelayURL     string      `json:"relay_url"`
	Hooks        hooksInfo   `json:"hooks"`
	Archive      archiveInfo `json:"archive"`
	CoreSkill    bool        `json:"core_skill"`
	Ratings7d    int         `json:"ratings_7d"`
	LatestReport string      `json:"latest_report,omitempty"`
}

func runDefaultStatus(cmd *cobra.Command, check bool) error {
	rootPath, source, err := app.ResolveRootDirDetailed()
	if err != nil {
		return cmdErr(cmd, err)
	}
	st := store.New(rootPath, store.WithLocation(app.Location()))

	result := statusResponse{
		Root:     rootInfo{Path: rootPath, Source: source, Exists: dirExists(rootPath)},
		TimeZone: st.Location().String(),
		RelayURL: app.RelayURL(),
		Hooks:    checkHooks(),
		Archive:  archiveInfo{Path: app.ArchivePath(rootPath)},
	}

	_, result.CoreSkill, _ = st.CoreSkill()
	if ratings, err := st.LoadRatings(7); err == nil {
		result.Ratings7d = len(ratings)
	}
	if path, _, found, err := st.LatestReport(); err == nil && found {
		result.LatestReport = path
	}

	if info, err := os.Stat(result.Archive.Path); err == nil {
		result.Archive.Exists = true
		size := info.Size()
		result.Archive.SizeBytes = &size
	}
	// --check opens (and migrates) the archive; plain status never creates it.
	if check {
		db, err := store.OpenArchiveDB(result.Archive.Path)
		if err != nil {
			result.Archive.Error = err.Error()
		} else {
			if v, err := store.SchemaVersion(db); err == nil {
				result.Archive.SchemaVersion = &v
			} else {
				result.Archive.Error = err.Error()
			}
			_ = db.Close()
			result.Archive.Exists = true
		}
	}

	return printSuccess(cmd, result)
}

// checkHooks reports which hook events carry a pai handler, across the
// user and project settings files.
func checkHooks() hooksInfo {
	info := hooksInfo{Events: map[string]bool{}}
	for _, projectScoped := range []bool{false, true} {
		path := hookcmd.SettingsPath(projectScoped)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		info.Settings = append(info.Settings, path)
		events, err := hookcmd.InstalledEvents(path)
		if err != nil {
			continue
		}
		for _, name := range events {
			info.Events[name] = true
			info.Installed = true
		}
	}
	return info
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Schema helpers shared by the schema command.

type commandArgSchema struct {
	Command     string                 `json:"command"`
	Description string                 `json:"description,omitempty"`
	ArgsSchema  map[string]interface{} `json:"args_schema"`
}

func collectCommandSchemas(cmd *cobra.Command, out *[]commandArgSchema) {
	if cmd.Name() != "" && cmd.Name() != "pai" && cmd.Name() != "schema" && !cmd.Hidden {
		*out = append(*out, buildCommandSchema(cmd))
	}

	for _, child := range cmd.Commands() {
		if child.Hidden {
			continue
		}
		collectCommandSchemas(child, out)
	}
}

func buildCommandSchema(cmd *cobra.Command) commandArgSchema {
	properties := map[string]interface{}{}
	required := make([]string, 0)
	seen := map[string]bool{}

	addFlag := func(f *pflag.Flag) {
		if f.Hidden || seen[f.Name] {
			return
		}
		seen[f.Name] = true

		flagSchema := map[string]interface{}{
			"type":        normalizeFlagType(f.Value.Type()),
			"description": f.Usage,
		}
		if f.DefValue != "" {
			flagSchema["default"] = typedFlagDefault(f.Value.Type(), f.DefValue)
		}
		if enumValues := parseEnumValues(f.Usage); len(enumValues) > 0 {
			flagSchema["enum"] = enumValues
		}
		properties[f.Name] = flagSchema

		if isRequiredFlag(f) {
			required = append(required, f.Name)
		}
	}

	cmd.InheritedFlags().VisitAll(addFlag)
	cmd.NonInheritedFlags().VisitAll(addFlag)

	argsSchema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		argsSchema["required"] = required
	}

	return commandArgSchema{
		Command:     cmd.CommandPath(),
		Description: cmd.Short,
		ArgsSchema:  argsSchema,
	}
}

func normalizeFlagType(flagType string) string {
	switch flagType {
	case "int", "int64", "int32", "uint", "uint64", "uint32":
		return "integer"
	case "bool":
		return "boolean"
	default:
		return "string"
	}
}

func typedFlagDefault(flagType, raw string) interface{} {
	switch flagType {
	case "bool":
		if v, err := strconv.ParseBool(raw); err == nil {
			return v
		}
	case "int", "int64", "int32", "uint", "uint64", "uint32":
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return raw
}

func isRequiredFlag(f *pflag.Flag) bool {
	if vals, ok := f.Annotations[cobra.BashCompOneRequiredFlag]; ok && len(vals) > 0 && vals[0] == "true" {
		return true
	}
	return strings.Contains(strings.ToLower(f.Usage), "(required)")
}

// parseEnumValues reads "a|b|c" after a colon or "(a, b)" at the end of a usage string.
func parseEnumValues(usage string) []string {
	usage = strings.TrimSpace(usage)
	if usage == "" {
		return nil
	}

	if idx := strings.Index(usage, ":"); idx >= 0 {
		cand := strings.TrimSpace(usage[idx+1:])
		if strings.Contains(cand, "|") {
			return normalizeEnumParts(strings.Split(cand, "|"))
		}
	}

	open := strings.LastIndex(usage, "(")
	end := strings.LastIndex(usage, ")")
	if open >= 0 && end > open {
		cand := usage[open+1 : end]
		if strings.Contains(strings.ToLower(cand), "e.g.") {
			return nil
		}
		if strings.Contains(cand, ",") {
			return normalizeEnumParts(strings.Split(cand, ","))
		}
	}
	return nil
}

func normalizeEnumParts(parts []string) []string {
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.Trim(strings.TrimSpace(p), "[]"))
		if p == "" || strings.ContainsAny(p, ". ") {
			continue
		}
		values = append(values, p)
	}
	if len(values) < 2 {
		return nil
	}
	return values
}
