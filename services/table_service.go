package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-tables/hub"
	"github.com/yeremiapane/restaurant-tables/metrics"
	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/qr"
	"github.com/yeremiapane/restaurant-tables/repository"
	"github.com/yeremiapane/restaurant-tables/utils"
	"gorm.io/gorm"
)

// EventPublisher receives domain events for connected floor screens.
type EventPublisher interface {
	Publish(event string, data interface{})
}

// ServerDirectory resolves assigned-server ids to display names.
type ServerDirectory interface {
	NamesByIDs(ctx context.Context, ids []uint) (map[uint]string, error)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, interface{}) {}

type CreateTableInput struct {
	TableNumber int
	Location    models.TableLocation
	Capacity    int
}

// UpdateTableInput carries a partial update; nil fields are left untouched.
type UpdateTableInput struct {
	TableNumber *int
	Location    *models.TableLocation
	Capacity    *int
	Status      *models.TableStatus
}

type TableService interface {
	CreateTable(ctx context.Context, in CreateTableInput) (*models.TableView, error)
	ListTables(ctx context.Context, filter repository.TableFilter) ([]models.TableView, error)
	GetTable(ctx context.Context, id uint) (*models.TableView, error)
	UpdateTable(ctx context.Context, id uint, in UpdateTableInput) (*models.TableView, error)
	UpdateStatus(ctx context.Context, id uint, status models.TableStatus) (*models.TableView, error)
	AssignServer(ctx context.Context, id uint, serverID *uint) (*models.TableView, error)
	DeleteTable(ctx context.Context, id uint) error
	TableQRPath(ctx context.Context, id uint) (string, error)
	Stats(ctx context.Context) (models.TableStats, error)
}

type tableService struct {
	tables       repository.TableRepository
	reservations repository.ReservationRepository
	directory    ServerDirectory
	issuer       qr.Issuer
	events       EventPublisher
	baseURL      string
}

func NewTableService(
	tables repository.TableRepository,
	reservations repository.ReservationRepository,
	directory ServerDirectory,
	issuer qr.Issuer,
	events EventPublisher,
	baseURL string,
) TableService {
	if events == nil {
		events = nopPublisher{}
	}
	return &tableService{
		tables:       tables,
		reservations: reservations,
		directory:    directory,
		issuer:       issuer,
		events:       events,
		baseURL:      baseURL,
	}
}

// TableMenuURL is the content encoded in a table's QR code.
func TableMenuURL(baseURL string, tableNumber int) string {
	return fmt.Sprintf("%s/api/tables/%d/menu", baseURL, tableNumber)
}

func (s *tableService) CreateTable(ctx context.Context, in CreateTableInput) (view *models.TableView, err error) {
	defer func() { recordTable("create", err) }()

	table := models.Table{
		TableNumber: in.TableNumber,
		Location:    in.Location,
		Capacity:    in.Capacity,
		Status:      models.TableAvailable,
	}
	if err := table.Validate(); err != nil {
		return nil, validation(err)
	}

	exists, err := s.tables.ExistsByNumber(ctx, table.TableNumber, 0)
	if err != nil {
		return nil, internal("Error creating table", err)
	}
	if exists {
		return nil, newError(KindDuplicateKey, "Table number already exists", nil)
	}

	handle, err := s.issuer.Issue(TableMenuURL(s.baseURL, table.TableNumber), qr.CategoryTable)
	if err != nil {
		return nil, internal("Error creating table", err)
	}
	metrics.RecordQRCode(qr.CategoryTable)
	table.QRCode = &handle

	if err := s.tables.Create(ctx, &table); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newError(KindDuplicateKey, "Table number already exists", err)
		}
		return nil, internal("Error creating table", err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"table_id":     table.ID,
		"table_number": table.TableNumber,
		"location":     table.Location,
	}).Info("Table created")

	view, err = s.view(ctx, &table)
	if err != nil {
		return nil, err
	}
	s.publishTable(ctx, hub.EventTableCreate, view)
	return view, nil
}

func (s *tableService) ListTables(ctx context.Context, filter repository.TableFilter) ([]models.TableView, error) {
	tables, err := s.tables.List(ctx, filter)
	if err != nil {
		return nil, internal("Error fetching tables", err)
	}
	return s.views(ctx, tables)
}

func (s *tableService) GetTable(ctx context.Context, id uint) (*models.TableView, error) {
	table, err := s.tables.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Table not found", "Error fetching table")
	}
	return s.view(ctx, table)
}

func (s *tableService) UpdateTable(ctx context.Context, id uint, in UpdateTableInput) (view *models.TableView, err error) {
	defer func() { recordTable("update", err) }()

	existing, err := s.tables.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Table not found", "Error updating table")
	}

	candidate := *existing
	fields := map[string]interface{}{}
	if in.TableNumber != nil {
		candidate.TableNumber = *in.TableNumber
		fields["table_number"] = *in.TableNumber
	}
	if in.Location != nil {
		candidate.Location = *in.Location
		fields["location"] = *in.Location
	}
	if in.Capacity != nil {
		candidate.Capacity = *in.Capacity
		fields["capacity"] = *in.Capacity
	}
	if in.Status != nil {
		if err := models.TransitionTableStatus(existing.Status, *in.Status); err != nil {
			return nil, validation(err)
		}
		candidate.Status = *in.Status
		fields["status"] = *in.Status
	}
	if err := candidate.Validate(); err != nil {
		return nil, validation(err)
	}

	if candidate.TableNumber != existing.TableNumber {
		taken, err := s.tables.ExistsByNumber(ctx, candidate.TableNumber, id)
		if err != nil {
			return nil, internal("Error updating table", err)
		}
		if taken {
			return nil, newError(KindDuplicateKey, "Table number already exists", nil)
		}
	}

	if len(fields) > 0 {
		if err := s.tables.Update(ctx, id, fields); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, newError(KindDuplicateKey, "Table number already exists", err)
			}
			return nil, internal("Error updating table", err)
		}
	}

	view, err = s.reload(ctx, id, "Error updating table")
	if err != nil {
		return nil, err
	}
	s.publishTable(ctx, hub.EventTableUpdate, view)
	return view, nil
}

func (s *tableService) UpdateStatus(ctx context.Context, id uint, status models.TableStatus) (view *models.TableView, err error) {
	defer func() { recordTable("update_status", err) }()

	table, err := s.tables.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Table not found", "Error updating table status")
	}
	if err := models.TransitionTableStatus(table.Status, status); err != nil {
		return nil, validation(err)
	}

	if err := s.tables.Update(ctx, id, map[string]interface{}{"status": status}); err != nil {
		return nil, internal("Error updating table status", err)
	}

	utils.InfoLogger.Printf("Table %d status changed from %s to %s", id, table.Status, status)

	view, err = s.reload(ctx, id, "Error updating table status")
	if err != nil {
		return nil, err
	}
	s.publishTable(ctx, hub.EventTableUpdate, view)
	return view, nil
}

// AssignServer does not check that serverID names an existing user; a nil
// serverID clears the assignment.
func (s *tableService) AssignServer(ctx context.Context, id uint, serverID *uint) (view *models.TableView, err error) {
	defer func() { recordTable("assign_server", err) }()

	if _, err := s.tables.FindByID(ctx, id); err != nil {
		return nil, storeError(err, "Table not found", "Error assigning server")
	}

	if err := s.tables.Update(ctx, id, map[string]interface{}{"assigned_server_id": serverID}); err != nil {
		return nil, internal("Error assigning server", err)
	}

	view, err = s.reload(ctx, id, "Error assigning server")
	if err != nil {
		return nil, err
	}
	s.publishTable(ctx, hub.EventTableUpdate, view)
	return view, nil
}

// DeleteTable refuses while confirmed or pending reservations reference the
// table. The table's QR file stays on disk.
func (s *tableService) DeleteTable(ctx context.Context, id uint) (err error) {
	defer func() { recordTable("delete", err) }()

	active, err := s.reservations.ActiveIDsForTable(ctx, id)
	if err != nil {
		return internal("Error deleting table", err)
	}
	if len(active) > 0 {
		e := newError(KindConflict, "Cannot delete table with active reservations", nil)
		e.Details = map[string]interface{}{"reservations": active}
		return e
	}

	deleted, err := s.tables.Delete(ctx, id)
	if err != nil {
		return internal("Error deleting table", err)
	}
	if !deleted {
		return notFound("Table not found")
	}

	utils.InfoLogger.Printf("Table %d deleted", id)
	s.publish(ctx, hub.EventTableDelete, map[string]interface{}{"tableId": id})
	return nil
}

func (s *tableService) TableQRPath(ctx context.Context, id uint) (string, error) {
	const missing = "QR code not found for this table"

	table, err := s.tables.FindByID(ctx, id)
	if err != nil {
		return "", storeError(err, missing, "Error fetching QR code")
	}
	if table.QRCode == nil || *table.QRCode == "" {
		return "", notFound(missing)
	}

	p, err := s.issuer.Path(*table.QRCode)
	if err != nil {
		if errors.Is(err, qr.ErrNotFound) || errors.Is(err, qr.ErrInvalidFilename) {
			return "", notFound(missing)
		}
		return "", internal("Error fetching QR code", err)
	}
	return p, nil
}

func (s *tableService) Stats(ctx context.Context) (models.TableStats, error) {
	counts, err := s.tables.CountByStatus(ctx)
	if err != nil {
		return models.TableStats{}, internal("Error fetching table stats", err)
	}

	stats := models.TableStats{
		Available:    counts[models.TableAvailable],
		Occupied:     counts[models.TableOccupied],
		Reserved:     counts[models.TableReserved],
		OutOfService: counts[models.TableOutOfService],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func (s *tableService) reload(ctx context.Context, id uint, internalMsg string) (*models.TableView, error) {
	table, err := s.tables.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Table not found", internalMsg)
	}
	return s.view(ctx, table)
}

func (s *tableService) view(ctx context.Context, table *models.Table) (*models.TableView, error) {
	views, err := s.views(ctx, []models.Table{*table})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// views joins tables with the server directory.
func (s *tableService) views(ctx context.Context, tables []models.Table) ([]models.TableView, error) {
	var ids []uint
	for _, t := range tables {
		if t.AssignedServerID != nil {
			ids = append(ids, *t.AssignedServerID)
		}
	}

	names := map[uint]string{}
	if len(ids) > 0 && s.directory != nil {
		var err error
		if names, err = s.directory.NamesByIDs(ctx, ids); err != nil {
			return nil, internal("Error resolving assigned servers", err)
		}
	}

	views := make([]models.TableView, 0, len(tables))
	for _, t := range tables {
		v := models.TableView{Table: t}
		if t.AssignedServerID != nil {
			v.AssignedServer = &models.ServerRef{ID: *t.AssignedServerID, Name: names[*t.AssignedServerID]}
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *tableService) publishTable(ctx context.Context, event string, view *models.TableView) {
	s.publish(ctx, event, map[string]interface{}{"table": view})
}

// publish attaches the current per-status counts, as the floor screens redraw
// their header from every table event.
func (s *tableService) publish(ctx context.Context, event string, data map[string]interface{}) {
	stats, err := s.Stats(ctx)
	if err != nil {
		utils.ErrorLogger.Printf("Error computing stats for %s: %v", event, err)
	} else {
		data["stats"] = stats
	}
	s.events.Publish(event, data)
}

func recordTable(op string, err error) {
	metrics.RecordTableOperation(op, outcome(err))
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(KindOf(err))
}
