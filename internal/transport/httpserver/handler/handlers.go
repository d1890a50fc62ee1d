package handler

import (
	frienddomain "maisafe-go/internal/domain/friend"
	meddomain "maisafe-go/internal/domain/medication"
	syncdomain "maisafe-go/internal/domain/sync"
	userdomain "maisafe-go/internal/domain/user"
	"maisafe-go/pkg/logger"
)

type Handlers struct {
	log         logger.Logger
	Users       *userdomain.Service
	Friends     *frienddomain.Service
	Medications *meddomain.Service
	Sync        *syncdomain.Service
}

func New(log logger.Logger, users *userdomain.Service, friends *frienddomain.Service, medications *meddomain.Service, sync *syncdomain.Service) *Handlers {
	return &Handlers{
		log:         log,
		Users:       users,
		Friends:     friends,
		Medications: medications,
		Sync:        sync,
	}
}
