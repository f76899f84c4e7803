package storage

// AdminRecord is the singleton curating identity. ID is fixed to 1.
type AdminRecord struct {
	ID      uint8  `gorm:"primaryKey"`
	Address string `gorm:"not null"`
}

// CollectionEntry is one registered collection. Position preserves append
// order; the unique index on Address is what makes appends idempotent.
type CollectionEntry struct {
	Position int64  `gorm:"primaryKey;autoIncrement"`
	Address  string `gorm:"uniqueIndex;not null"`
}

type RaffleRecord struct {
	ID               uint64 `gorm:"primaryKey;autoIncrement"`
	Creator          string `gorm:"not null"`
	Asset            string `gorm:"not null"`
	TicketPrice      uint64 `gorm:"not null"`
	StartTime        int64  `gorm:"not null"`
	EndTime          int64  `gorm:"not null"`
	MaxTickets       uint64 `gorm:"not null"`
	TicketCount      uint64 `gorm:"default:0"`
	UniqueBuyerCount uint64 `gorm:"default:0"`
	WinnerIndex      uint64 `gorm:"default:0"`
	Winner           string `gorm:"default:''"`
	Status           uint8  `gorm:"default:0"`
}

// EntrantRecord is one sold ticket. A buyer holding n tickets owns n rows.
type EntrantRecord struct {
	RaffleID    uint64 `gorm:"primaryKey;autoIncrement:false"`
	TicketIndex uint64 `gorm:"primaryKey;autoIncrement:false"`
	Buyer       string `gorm:"not null;index"`
}
