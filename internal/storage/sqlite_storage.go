package storage

import (
	"errors"

	"github.com/tonkeeper/tongo/ton"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"raffle/internal/logger"
	"raffle/internal/raffle"
)

// SqliteStorage implements raffle.Store on a sqlite database. Every Store
// method runs as one gorm transaction, so a failing callback or a failing
// later statement rolls the whole call back.
type SqliteStorage struct {
	db *gorm.DB
}

func NewSqliteStorage(path string) *SqliteStorage {

	logger.Debug("initializing database...", zap.String("path", path))
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	err = db.AutoMigrate(
		&AdminRecord{},
		&CollectionEntry{},
		&RaffleRecord{},
		&EntrantRecord{},
	)

	if err != nil {
		panic(err)
	}

	logger.Debug("initializing database... done")
	return &SqliteStorage{
		db: db,
	}
}

func (s *SqliteStorage) Admin() (ton.AccountID, error) {

	var admin AdminRecord
	err := s.db.First(&admin, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ton.AccountID{}, raffle.ErrAdminNotInitialized
	}
	if err != nil {
		return ton.AccountID{}, err
	}

	return ton.ParseAccountID(admin.Address)
}

func (s *SqliteStorage) InitializeAdmin(admin ton.AccountID) error {
	logger.Debug("persisting admin identity...")

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing AdminRecord
		err := tx.First(&existing, 1).Error
		if err == nil {
			return raffle.ErrAdminAlreadyInitialized
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(&AdminRecord{ID: 1, Address: admin.ToRaw()}).Error
	})

	if err != nil {
		return err
	}

	logger.Debug("persisting admin identity... done")
	return nil
}

func (s *SqliteStorage) Collections() ([]ton.AccountID, error) {

	var entries []*CollectionEntry
	err := s.db.Order("position").Find(&entries).Error
	if err != nil {
		return nil, err
	}

	collections := make([]ton.AccountID, 0, len(entries))
	for _, entry := range entries {
		collection, err := ton.ParseAccountID(entry.Address)
		if err != nil {
			return nil, err
		}
		collections = append(collections, collection)
	}

	return collections, nil
}

func (s *SqliteStorage) AppendCollection(id ton.AccountID, capacity int) (bool, error) {
	logger.Debug("appending collection...", zap.String("collection", id.ToRaw()))

	added := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		err := tx.Model(&CollectionEntry{}).Where("address = ?", id.ToRaw()).Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		var count int64
		if err := tx.Model(&CollectionEntry{}).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(capacity) {
			return raffle.ErrCapacityExceeded
		}

		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "address"}},
			DoNothing: true,
		}).Create(&CollectionEntry{Address: id.ToRaw()})
		if result.Error != nil {
			return result.Error
		}

		added = result.RowsAffected > 0
		return nil
	})

	if err != nil {
		return false, err
	}

	logger.Debug("appending collection... done", zap.Bool("added", added))
	return added, nil
}

func (s *SqliteStorage) CreateRaffle(rec *raffle.Record, escrow func() error) error {
	logger.Debug("persisting raffle record...")

	err := s.db.Transaction(func(tx *gorm.DB) error {
		row := &RaffleRecord{
			Creator:          rec.Creator.ToRaw(),
			Asset:            rec.Asset.ToRaw(),
			TicketPrice:      rec.TicketPrice,
			StartTime:        rec.StartTime,
			EndTime:          rec.EndTime,
			MaxTickets:       rec.MaxTickets,
			TicketCount:      rec.TicketCount,
			UniqueBuyerCount: rec.UniqueBuyerCount,
			Status:           uint8(rec.Status),
		}

		if err := tx.Create(row).Error; err != nil {
			return err
		}
		rec.ID = row.ID

		return escrow()
	})

	if err != nil {
		return err
	}

	logger.Debug("persisting raffle record... done", zap.Uint64("raffle", rec.ID))
	return nil
}

func (s *SqliteStorage) GetRaffle(id uint64) (*raffle.Record, error) {

	var rec *raffle.Record
	err := s.db.Transaction(func(tx *gorm.DB) error {
		loaded, err := loadRaffle(tx, id)
		if err != nil {
			return err
		}
		rec = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

func (s *SqliteStorage) UpdateRaffle(id uint64, mutate func(rec *raffle.Record) error) error {

	return s.db.Transaction(func(tx *gorm.DB) error {
		rec, err := loadRaffle(tx, id)
		if err != nil {
			return err
		}

		previousCount := rec.TicketCount

		if err := mutate(rec); err != nil {
			return err
		}

		if rec.TicketCount > previousCount {
			appended := make([]*EntrantRecord, 0, rec.TicketCount-previousCount)
			for index := previousCount; index < rec.TicketCount; index++ {
				appended = append(appended, &EntrantRecord{
					RaffleID:    id,
					TicketIndex: index,
					Buyer:       rec.Entrants[index].ToRaw(),
				})
			}
			if err := tx.CreateInBatches(appended, 100).Error; err != nil {
				return err
			}
		}

		winner := ""
		if rec.Status == raffle.StatusDrawn || rec.Status == raffle.StatusClaimed {
			winner = rec.Winner.ToRaw()
		}

		return tx.Model(&RaffleRecord{}).Where("id = ?", id).Updates(map[string]interface{}{
			"ticket_count":       rec.TicketCount,
			"unique_buyer_count": rec.UniqueBuyerCount,
			"winner_index":       rec.WinnerIndex,
			"winner":             winner,
			"status":             uint8(rec.Status),
		}).Error
	})
}

func loadRaffle(tx *gorm.DB, id uint64) (*raffle.Record, error) {

	var row RaffleRecord
	err := tx.First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, raffle.ErrRaffleNotFound
	}
	if err != nil {
		return nil, err
	}

	var entrantRows []*EntrantRecord
	err = tx.Where("raffle_id = ?", id).Order("ticket_index").Find(&entrantRows).Error
	if err != nil {
		return nil, err
	}

	creator, err := ton.ParseAccountID(row.Creator)
	if err != nil {
		return nil, err
	}
	asset, err := ton.ParseAccountID(row.Asset)
	if err != nil {
		return nil, err
	}

	var winner ton.AccountID
	if row.Winner != "" {
		winner, err = ton.ParseAccountID(row.Winner)
		if err != nil {
			return nil, err
		}
	}

	entrants := make([]ton.AccountID, 0, len(entrantRows))
	for _, entrantRow := range entrantRows {
		buyer, err := ton.ParseAccountID(entrantRow.Buyer)
		if err != nil {
			return nil, err
		}
		entrants = append(entrants, buyer)
	}

	return &raffle.Record{
		ID:               row.ID,
		Creator:          creator,
		Asset:            asset,
		TicketPrice:      row.TicketPrice,
		StartTime:        row.StartTime,
		EndTime:          row.EndTime,
		MaxTickets:       row.MaxTickets,
		TicketCount:      row.TicketCount,
		UniqueBuyerCount: row.UniqueBuyerCount,
		WinnerIndex:      row.WinnerIndex,
		Winner:           winner,
		Status:           raffle.Status(row.Status),
		Entrants:         entrants,
	}, nil
}
