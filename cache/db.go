package cache

import (
	"database/sql"
	"errors"
	"sync"
)

var (
	db      *sql.DB
	dbMutex sync.RWMutex
)

func SetDB(d *sql.DB) {
	dbMutex.Lock()
	db = d
	dbMutex.Unlock()
}

func GetDB() *sql.DB {
	dbMutex.RLock()
	defer dbMutex.RUnlock()

	if db == nil {
		panic(errors.New("Tried to get database before cache#SetDB() was called"))
	}

	return db
}
