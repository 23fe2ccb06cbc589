// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package sql

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	DriverNamePostgres = "postgres"
)

type dialectorFactoryFunc func(conf DatabaseConfig) gorm.Dialector

var dialectors = map[string]dialectorFactoryFunc{
	DriverNamePostgres: initPostgres,
}

func getDialector(conf DatabaseConfig) gorm.Dialector {
	factory, ok := dialectors[conf.Driver]
	if !ok {
		panic(fmt.Sprintf("unsupported sql driver: %s", conf.Driver))
	}
	return factory(conf)
}

func initPostgres(conf DatabaseConfig) gorm.Dialector {
	sslMode := conf.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s password=%s sslmode=%s",
		conf.Host, conf.Port, conf.UserName, conf.DBName, conf.Password, sslMode)
	if conf.TimeZone != "" {
		dsn += fmt.Sprintf(" timezone=%s", conf.TimeZone)
	}
	return postgres.Open(dsn)
}
