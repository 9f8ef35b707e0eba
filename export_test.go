package extcore

// Test-only exports for internal functions.
var (
	PatternParams = patternParams
	TagOptions    = tagOptions
	TagContains   = tagContains
	FormFieldName = formFieldName
	IsStringMap   = isStringMap
	IsParamField  = isParamField
)
