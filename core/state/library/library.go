package library

import (
	"context"
	"time"
)

// InstallRecord is what the library remembers about an installed app. Its presence on an
// entry is what makes the app count as installed.
type InstallRecord struct {
	VersionNumber string  `json:"version_number"`
	Variant       Variant `json:"variant"`
}

type Data struct {
	Install *InstallRecord `json:"install,omitempty"`
	AddedAt time.Time      `json:"added_at"`
}

func (d Data) Installed() bool {
	return d.Install != nil
}

type Entry struct {
	AppID string `json:"app_id"`
	Data  Data   `json:"data"`
}

// Store is the persisted library, keyed by app id.
type Store interface {
	// TryGet returns the entry for appID, or false if the app is not in the library.
	TryGet(ctx context.Context, appID string) (*Entry, bool, error)
	// Update applies fn to the entry's data, creating the entry first if needed.
	Update(ctx context.Context, appID string, fn func(Data) Data) (*Entry, error)
	// Add puts appID in the library. Adding an existing app returns the existing entry.
	Add(ctx context.Context, appID string) (*Entry, error)
	// Remove deletes the entry, returning whether it existed.
	Remove(ctx context.Context, appID string) (bool, error)
	List(ctx context.Context) ([]*Entry, error)
}
