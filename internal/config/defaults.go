package config

// ModuleName is the cosmiconfig module name stylelint uses.
const ModuleName = "stylelint"

// SearchPlaces are the config files looked for in each directory, in order.
// package.json only counts when it has a "stylelint" field.
var SearchPlaces = []string{
	"package.json",
	".stylelintrc",
	".stylelintrc.json",
	".stylelintrc.yaml",
	".stylelintrc.yml",
	".stylelintrc.js",
	"stylelint.config.js",
	"stylelint.config.cjs",
}

// MaxExtendsDepth bounds how deep extends chains are followed.
const MaxExtendsDepth = 32

// resolveExtensions are tried, in order, for extensionless extends paths.
// JavaScript is last so that a JS-only target fails with a clear parse error
// instead of "not found".
var resolveExtensions = []string{".json", ".yaml", ".yml", ".js"}

// indexFiles are tried when a package has no usable "main".
var indexFiles = []string{"index.json", "index.yaml", "index.yml", "index.js"}

// koanfDelim is the koanf key delimiter. Rule names may contain "." and "/",
// so the default "." would split them.
const koanfDelim = "::"
