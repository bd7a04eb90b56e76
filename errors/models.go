package errors

const (
	CurrentPageInvalidErrorCode    = 200_001
	ObjectIDNotFoundErrorCode      = 200_002
	ObjectIDRequiredErrorCode      = 200_003
	MatchTypeInvalidErrorCode      = 200_004
	RequiredFieldMissingErrorCode  = 200_005
	FieldInvalidErrorCode          = 200_006
	NoUpdatableFieldErrorCode      = 200_007
	QueryParameterInvalidErrorCode = 200_008
	SortFieldInvalidErrorCode      = 200_009
	PageSizeInvalidErrorCode       = 200_010
)

// CurrentPageInvalidError indicates user gives invalid current page when searching items
var CurrentPageInvalidError = new(CurrentPageInvalidErrorCode, "CurrentPageInvalid", "Current page can be only positive integer")

// ObjectIDNotFoundError indicates user gives ID that does not resolve to any item
var ObjectIDNotFoundError = new(ObjectIDNotFoundErrorCode, "ObjectIDNotFound", "Item with ID %s is not exist")

// ObjectIDRequiredError indicates user does not give item ID in path
var ObjectIDRequiredError = new(ObjectIDRequiredErrorCode, "ObjectIDRequired", "Item ID is required")

// MatchTypeInvalidError indicates user give invalid or unsupported match type when user search items
var MatchTypeInvalidError = new(MatchTypeInvalidErrorCode, "MatchTypeInvalid", "Match type %v is invalid or unsupported")

// RequiredFieldMissingError indicates user creates item without some required fields
var RequiredFieldMissingError = new(RequiredFieldMissingErrorCode, "RequiredFieldMissing", "All required fields must be provided, missing: %s")

// FieldInvalidError indicates item field values break the field constraints
var FieldInvalidError = new(FieldInvalidErrorCode, "FieldInvalid", "Invalid field value: %s")

// NoUpdatableFieldError indicates user updates item without any mutable field
var NoUpdatableFieldError = new(NoUpdatableFieldErrorCode, "NoUpdatableField", "At least one field must be provided to update")

// QueryParameterInvalidError indicates user gives query parameter that cannot be parsed
var QueryParameterInvalidError = new(QueryParameterInvalidErrorCode, "QueryParameterInvalid", "Query parameter %s has invalid value %q")

// SortFieldInvalidError indicates user sorts items by unknown field
var SortFieldInvalidError = new(SortFieldInvalidErrorCode, "SortFieldInvalid", "Cannot sort by unknown field %q")

// PageSizeInvalidError indicates user gives page size out of the allowed range
var PageSizeInvalidError = new(PageSizeInvalidErrorCode, "PageSizeInvalid", "Page size must be between 1 and %d")
