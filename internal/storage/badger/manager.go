package badger

import (
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db        *BadgerDB
	source    interfaces.DataSourceStorage
	datapoint interfaces.DataPointStorage
	template  interfaces.TemplateStorage
	document  interfaces.DocumentStorage
	logger    arbor.ILogger
}

// NewManager creates a new Badger storage manager. The secrets cipher is
// used to encrypt data source credentials at rest; gcInterval controls the
// value-log GC loop (zero disables it).
func NewManager(logger arbor.ILogger, config *common.BadgerConfig, secrets *common.Secrets, gcInterval time.Duration) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}
	db.StartGC(gcInterval)

	datapoint := NewDataPointStorage(db, logger)

	manager := &Manager{
		db:        db,
		source:    NewDataSourceStorage(db, datapoint, secrets, logger),
		datapoint: datapoint,
		template:  NewTemplateStorage(db, logger),
		document:  NewDocumentStorage(db, logger),
		logger:    logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// DataSourceStorage returns the DataSource storage interface
func (m *Manager) DataSourceStorage() interfaces.DataSourceStorage {
	return m.source
}

// DataPointStorage returns the DataPoint storage interface
func (m *Manager) DataPointStorage() interfaces.DataPointStorage {
	return m.datapoint
}

// TemplateStorage returns the Template storage interface
func (m *Manager) TemplateStorage() interfaces.TemplateStorage {
	return m.template
}

// DocumentStorage returns the Document storage interface
func (m *Manager) DocumentStorage() interfaces.DocumentStorage {
	return m.document
}

// Close closes the underlying database
func (m *Manager) Close() error {
	return m.db.Close()
}
