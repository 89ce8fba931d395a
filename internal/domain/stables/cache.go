package stables

import "time"

type Cache interface {
	GetByUserID(userID string) (*Stable, bool)
	SetByUserID(userID string, stable *Stable, ttl time.Duration)
	DeleteByUserID(userID string)
	Clear()
}

type noopCache struct{}

func (noopCache) GetByUserID(string) (*Stable, bool) {
	return nil, false
}

func (noopCache) SetByUserID(string, *Stable, time.Duration) {}

func (noopCache) DeleteByUserID(string) {}

func (noopCache) Clear() {}
