package scope

import "gorm.io/gorm"

func OrderByCreatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

func OrderByCreatedAsc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// ActiveRooms hides soft-deleted rooms.
func ActiveRooms(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = true")
}

func PublicRooms(db *gorm.DB) *gorm.DB {
	return db.Where("is_public = true")
}
