// Package platform holds the adapters for the supported course platforms.
package platform

import (
	"github.com/dealmungchi/coursecrawler/config"
	"github.com/dealmungchi/coursecrawler/internal/crawler"
)

// NewRegistry builds the adapter registry from configuration
func NewRegistry(cfg *config.Config) (*crawler.Registry, error) {
	return crawler.NewRegistry(
		Udemy(cfg.UdemyURLTemplate, cfg.CardWaitTimeout),
		Pluralsight(cfg.PluralsightURLTemplate, cfg.CardWaitTimeout),
	)
}
