package media

// AssetType identifies a category of stored media
type AssetType string

const (
	// AssetTypeSnapshot is a violation evidence frame
	AssetTypeSnapshot AssetType = "snapshot"
	// AssetTypeEnrollment is an employee enrollment photo
	AssetTypeEnrollment AssetType = "enrollment"
)
