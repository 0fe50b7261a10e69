package database

import (
	"context"
	"fmt"
	"time"

	"github.com/medassist-io/graphrag/helper"
	"github.com/medassist-io/graphrag/model"
	loadSql "github.com/medassist-io/graphrag/sql"
)

// RelationsDBHandlerFunctions defines the interface for relation database
// operations.
type RelationsDBHandlerFunctions interface {
	InsertRelation(relation *model.GraphRelation) error
	SelectNeighbors(name string) ([]model.Neighbor, error)
	SelectOutgoingRelations(name string) ([]model.Neighbor, error)
	CountRelations() (int64, error)
}

// RelationsDBHandler handles relation-related database operations
type RelationsDBHandler struct {
	db *helper.Database
}

// NewRelationsDBHandler creates a new relations database handler.
// It initializes the database connection and loads relation-related SQL
// functions. If force is true, it will reload the SQL functions even if they
// already exist. The nodes table must exist first.
func NewRelationsDBHandler(db *helper.Database, force bool) (*RelationsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	relationsDbHandler := &RelationsDBHandler{
		db: db,
	}

	err := loadSql.LoadRelationsSql(relationsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load relations sql", err)
	}

	err = relationsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized RelationsDBHandler")

	return relationsDbHandler, nil
}

// CreateTable creates the 'relations' table in the database.
// If the table already exists, it does not create it again.
func (h *RelationsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_relations();`)
	if err != nil {
		return helper.NewError("init relations table", err)
	}

	h.db.Logger.Info("Checked/created table relations")

	return nil
}

// InsertRelation inserts a directed relation between two existing nodes,
// identified by name. Inserting the same triple again updates the
// properties.
func (h *RelationsDBHandler) InsertRelation(relation *model.GraphRelation) error {
	if relation.Properties == nil {
		relation.Properties = model.Properties{}
	}

	_, err := h.db.Instance.Exec(
		`SELECT insert_relation($1, $2, $3, $4)`,
		relation.Source,
		relation.Target,
		string(relation.Type),
		relation.Properties,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}

	return nil
}

// SelectNeighbors retrieves the neighbors of a node in both edge
// directions, deduplicated by neighbor name.
func (h *RelationsDBHandler) SelectNeighbors(name string) ([]model.Neighbor, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_neighbors($1)`,
		name,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var neighbors []model.Neighbor
	for rows.Next() {
		neighbor := model.Neighbor{}
		err := rows.Scan(
			&neighbor.Name,
			&neighbor.Category,
			&neighbor.Relation,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		neighbors = append(neighbors, neighbor)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return neighbors, nil
}

// SelectOutgoingRelations retrieves the targets of a node's outgoing edges
// in insertion order.
func (h *RelationsDBHandler) SelectOutgoingRelations(name string) ([]model.Neighbor, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_outgoing_relations($1)`,
		name,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var neighbors []model.Neighbor
	for rows.Next() {
		neighbor := model.Neighbor{}
		err := rows.Scan(
			&neighbor.Name,
			&neighbor.Category,
			&neighbor.Relation,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		neighbors = append(neighbors, neighbor)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return neighbors, nil
}

// CountRelations returns the number of stored relations.
func (h *RelationsDBHandler) CountRelations() (int64, error) {
	var count int64
	err := h.db.Instance.QueryRow(`SELECT count_relations()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}
