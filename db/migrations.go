package db

import "embed"

// Migrations holds the session store schema, applied by `hrms-portal migrate`.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"
