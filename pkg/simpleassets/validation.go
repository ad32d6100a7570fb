package simpleassets

import "strings"

// ValidateSearchCriteria rejects nil criteria, present-but-blank string filters
// and date bounds where start is not strictly before end.
func ValidateSearchCriteria(criteria *SearchCriteria) error {
	if criteria == nil {
		return newValidationError("criteria", "search criteria must not be null")
	}
	if isBlank(criteria.FilenamePattern) {
		return newValidationError("filename", "filename must not be empty or blank")
	}
	if isBlank(criteria.ContentType) {
		return newValidationError("filetype", "filetype must not be empty or blank")
	}
	if criteria.UploadDateStart != nil && criteria.UploadDateEnd != nil &&
		!criteria.UploadDateStart.Before(*criteria.UploadDateEnd) {
		return newValidationError("uploadDateStart", "uploadDateStart must be strictly before uploadDateEnd")
	}
	return nil
}

// validateAsset checks an asset before it is persisted.
func validateAsset(asset *Asset) error {
	if asset == nil {
		return newValidationError("asset", "asset must not be null")
	}
	if strings.TrimSpace(asset.Filename) == "" {
		return newValidationError("filename", "asset name is required")
	}
	return nil
}

// isBlank is true only for a present value that is empty or whitespace.
func isBlank(value *string) bool {
	return value != nil && strings.TrimSpace(*value) == ""
}
