package database

import (
	"context"
	"fmt"
	"time"

	"github.com/medassist-io/graphrag/helper"
	"github.com/medassist-io/graphrag/model"
	loadSql "github.com/medassist-io/graphrag/sql"
)

// NodesDBHandlerFunctions defines the interface for node database operations.
type NodesDBHandlerFunctions interface {
	InsertNode(node *model.GraphNode) error
	SelectNodeByName(name string) (*model.GraphNode, error)
	SearchNodes(term string, limit int) ([]*model.GraphNode, error)
	SelectNodesByCategory(category model.NodeType, limit int) ([]*model.GraphNode, error)
	DeleteNode(id int) error
	CountNodes() (int64, error)
}

// NodesDBHandler handles node-related database operations
type NodesDBHandler struct {
	db *helper.Database
}

// NewNodesDBHandler creates a new nodes database handler.
// It initializes the database connection and loads node-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewNodesDBHandler(db *helper.Database, force bool) (*NodesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	nodesDbHandler := &NodesDBHandler{
		db: db,
	}

	err := loadSql.LoadNodesSql(nodesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load nodes sql", err)
	}

	err = nodesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized NodesDBHandler")

	return nodesDbHandler, nil
}

// CreateTable creates the 'nodes' table in the database.
// If the table already exists, it does not create it again.
func (h *NodesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_nodes();`)
	if err != nil {
		return helper.NewError("init nodes table", err)
	}

	h.db.Logger.Info("Checked/created table nodes")

	return nil
}

// InsertNode inserts a new node (or updates if a node with the same name
// exists). The generated ID is written back into the node.
func (h *NodesDBHandler) InsertNode(node *model.GraphNode) error {
	if node.Properties == nil {
		node.Properties = model.Properties{}
	}

	var createdAt time.Time
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_node($1, $2, $3)`,
		node.Name,
		string(node.Category),
		node.Properties,
	)

	err := row.Scan(
		&node.ID,
		&node.Name,
		&node.Category,
		&node.Properties,
		&createdAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectNodeByName retrieves a node by its name, case-insensitively.
// A missing node is reported as (nil, nil).
func (h *NodesDBHandler) SelectNodeByName(name string) (*model.GraphNode, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_node_by_name($1)`,
		name,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, helper.NewError("rows error", err)
		}
		return nil, nil
	}

	node, err := scanNode(rows)
	if err != nil {
		return nil, err
	}
	return node, nil
}

// SearchNodes retrieves nodes whose name contains the term.
func (h *NodesDBHandler) SearchNodes(term string, limit int) ([]*model.GraphNode, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM search_nodes($1, $2)`,
		term,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var nodes []*model.GraphNode
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return nodes, nil
}

// SelectNodesByCategory retrieves nodes of one category.
func (h *NodesDBHandler) SelectNodesByCategory(category model.NodeType, limit int) ([]*model.GraphNode, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_nodes_by_category($1, $2)`,
		string(category),
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var nodes []*model.GraphNode
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return nodes, nil
}

// DeleteNode deletes a node and its relations by ID.
func (h *NodesDBHandler) DeleteNode(id int) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_node($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// CountNodes returns the number of stored nodes.
func (h *NodesDBHandler) CountNodes() (int64, error) {
	var count int64
	err := h.db.Instance.QueryRow(`SELECT count_nodes()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*model.GraphNode, error) {
	node := &model.GraphNode{}
	var createdAt time.Time
	err := row.Scan(
		&node.ID,
		&node.Name,
		&node.Category,
		&node.Properties,
		&createdAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}
	return node, nil
}
