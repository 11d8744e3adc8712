package form

// Universal fields.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldLocation    = "location"
	FieldCategory    = "category"
	FieldSubcategory = "subcategory"
)

// Category-conditional fields.
const (
	FieldPlotSize     = "plotSize"
	FieldUnit         = "unit"
	FieldRooms        = "rooms"
	FieldToilets      = "toilets"
	FieldCondition    = "condition"
	FieldJobType      = "jobType"
	FieldMake         = "make"
	FieldModel        = "model"
	FieldYear         = "year"
	FieldCompany      = "company"
	FieldSalary       = "salary"
	FieldRentalType   = "rentalType"
	FieldRentalPeriod = "rentalPeriod"
)

// Pseudo fields used only as validation error keys.
const (
	FieldImages = "images"
	FieldTerms  = "terms"
)

const (
	CategoryLand        = "Land"
	CategoryRealEstate  = "Real Estate"
	CategoryVehicles    = "Vehicles"
	CategoryPhones      = "Phones & Tablets"
	CategoryElectronics = "Electronics"
	CategoryFashion     = "Fashion"
	CategoryJobs        = "Jobs"
)

var universalFields = []string{
	FieldTitle, FieldDescription, FieldPrice, FieldLocation, FieldCategory, FieldSubcategory,
}

// sharedAttributeFields apply to every category.
var sharedAttributeFields = []string{FieldRentalType, FieldRentalPeriod}

// categoryAttributeFields lists every attribute a category keeps on the
// persisted listing, required or optional.
var categoryAttributeFields = map[string][]string{
	CategoryLand:        {FieldPlotSize, FieldUnit},
	CategoryRealEstate:  {FieldRooms, FieldToilets},
	CategoryVehicles:    {FieldCondition, FieldMake, FieldModel, FieldYear},
	CategoryPhones:      {FieldCondition},
	CategoryElectronics: {FieldCondition},
	CategoryFashion:     {FieldCondition},
	CategoryJobs:        {FieldJobType, FieldCompany, FieldSalary},
}

var knownFields = func() map[string]bool {
	known := make(map[string]bool)
	for _, f := range universalFields {
		known[f] = true
	}
	for _, f := range sharedAttributeFields {
		known[f] = true
	}
	for _, fields := range categoryAttributeFields {
		for _, f := range fields {
			known[f] = true
		}
	}
	return known
}()

// IsKnownField reports whether name is a form field the workflow accepts.
func IsKnownField(name string) bool {
	return knownFields[name]
}

// AttributeFields returns the attribute fields kept for category, including
// the shared rental fields.
func AttributeFields(category string) []string {
	fields := make([]string, 0, len(categoryAttributeFields[category])+len(sharedAttributeFields))
	fields = append(fields, categoryAttributeFields[category]...)
	return append(fields, sharedAttributeFields...)
}
