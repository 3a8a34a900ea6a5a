package output

import "github.com/leapstack-labs/findrules/pkg/lint"

// AuditOutput is the JSON/YAML shape of an audit run.
// Sections that were not requested are omitted; requested but empty ones
// are rendered as empty lists.
type AuditOutput struct {
	RunID         string   `json:"run_id" yaml:"run_id"`
	Version       string   `json:"version" yaml:"version"`
	ConfigFile    string   `json:"config_file" yaml:"config_file"`
	ConfigSources []string `json:"config_sources" yaml:"config_sources"`
	LibraryDir    string   `json:"library_dir" yaml:"library_dir"`
	Classified    bool     `json:"classified" yaml:"classified"`
	ElapsedMS     int64    `json:"elapsed_ms" yaml:"elapsed_ms"`

	Current    *[]lint.Entry `json:"current,omitempty" yaml:"current,omitempty"`
	Available  *[]lint.Entry `json:"available,omitempty" yaml:"available,omitempty"`
	Unused     *[]lint.Entry `json:"unused,omitempty" yaml:"unused,omitempty"`
	Deprecated *[]lint.Entry `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Invalid    *[]lint.Entry `json:"invalid,omitempty" yaml:"invalid,omitempty"`
}

// ExplainOutput is the JSON/YAML shape of a single-rule explanation.
type ExplainOutput struct {
	Rule         string `json:"rule" yaml:"rule"`
	URL          string `json:"url" yaml:"url"`
	DocPath      string `json:"doc_path" yaml:"doc_path"`
	ScannedBytes int    `json:"scanned_bytes" yaml:"scanned_bytes"`
	ChunkSize    int    `json:"chunk_size" yaml:"chunk_size"`
	Deprecated   bool   `json:"deprecated" yaml:"deprecated"`
	Configured   bool   `json:"configured" yaml:"configured"`
	Excerpt      string `json:"excerpt" yaml:"excerpt"`
}
