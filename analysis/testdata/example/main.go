package main

import (
	"database/sql"
	"os"
)

type Handler struct {
	db *sql.DB
}

func Source() string {
	return os.Getenv("QUERY")
}

func (h *Handler) Query(q string) error {
	_, err := h.db.Exec(q)
	return err
}

func main() {
	h := &Handler{}
	_ = h.Query(Source())
}
