package common

var TruePtr *bool = &[]bool{true}[0]
var FalsePtr *bool = &[]bool{false}[0]

type AgeCategory string

const (
	AGE_CATEGORY_CURRENT AgeCategory = "current"
	AGE_CATEGORY_MEDIUM  AgeCategory = "medium"
	AGE_CATEGORY_OLD     AgeCategory = "old"
	AGE_CATEGORY_UNKNOWN AgeCategory = "unknown"
)

type OutputFormat string

const (
	OUTPUT_FORMAT_TABLE    OutputFormat = "table"
	OUTPUT_FORMAT_JSON     OutputFormat = "json"
	OUTPUT_FORMAT_MARKDOWN OutputFormat = "markdown"
	OUTPUT_FORMAT_SUMMARY  OutputFormat = "summary"
)

// The regexp used to parse normalized Composer versions (eg. "2.3.1.0" or "1.0.0.0-beta1").
const VERSIONING_COMPOSER = `^(\d+)\.(\d+)\.(\d+)\.(\d+)(?:-(.+))?$`
