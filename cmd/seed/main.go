package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/omnibar-app/omnibar/backend/internal/config"
	"github.com/omnibar-app/omnibar/backend/internal/database"
	"github.com/omnibar-app/omnibar/backend/internal/models"
	"github.com/omnibar-app/omnibar/backend/internal/omnibox"
	"github.com/omnibar-app/omnibar/backend/internal/repository"
	"github.com/omnibar-app/omnibar/backend/internal/seeder"
	"github.com/omnibar-app/omnibar/backend/pkg/utils"
)

const crawlerUserAgent = "OmnibarCrawler/1.0 (+https://github.com/omnibar-app/omnibar)"

// Command line flags
var (
	dryRun     = flag.Bool("dry-run", false, "Crawl and print results without writing to the database")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	pageLimit  = flag.Int("limit", 50, "Maximum number of pages to crawl per run")
	concurrent = flag.Int("concurrent", 2, "Number of concurrent requests")
	delay      = flag.Duration("delay", time.Second, "Delay between requests to the same domain")
	staleAfter = flag.Duration("stale-after", 24*time.Hour, "Re-crawl pages last crawled before this long ago")
)

// PageCrawler refreshes the stored content of saved links and stale
// page visits so history search has fresh text to match against.
type PageCrawler struct {
	analyzer    *omnibox.ContextAnalyzer
	processor   *seeder.ContentProcessor
	repoManager *repository.RepositoryManager
	logger      *logrus.Logger
	crawled     int
	errors      []error
}

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	logger.Info("Starting page content crawler...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	dbManager, err := database.NewManager(cfg.Database.URL, cfg.Redis.URL, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	crawler := &PageCrawler{
		analyzer:    omnibox.NewContextAnalyzer(),
		processor:   seeder.NewContentProcessor(),
		repoManager: repository.NewRepositoryManager(dbManager.DB),
		logger:      logger,
	}

	if err := crawler.Run(); err != nil {
		logger.WithError(err).Fatal("Crawl run failed")
	}

	logger.WithFields(logrus.Fields{
		"crawled": crawler.crawled,
		"errors":  len(crawler.errors),
	}).Info("Crawl run completed")
}

func (pc *PageCrawler) Run() error {
	targets, err := pc.collectTargets()
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		pc.logger.Info("Nothing to crawl")
		return nil
	}

	pc.logger.WithField("total_pages", len(targets)).Info("Crawling pages")

	collector := colly.NewCollector(
		colly.UserAgent(crawlerUserAgent),
		colly.Async(true),
	)
	collector.SetRequestTimeout(30 * time.Second)
	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: *concurrent,
		Delay:       *delay,
	}); err != nil {
		return fmt.Errorf("failed to configure collector limits: %w", err)
	}

	collector.OnResponse(func(r *colly.Response) {
		pc.storePage(r.Request.URL.String(), string(r.Body))
	})

	collector.OnError(func(r *colly.Response, err error) {
		pc.logger.WithError(err).WithField("url", r.Request.URL.String()).Warn("Crawl request failed")
		pc.errors = append(pc.errors, fmt.Errorf("failed to crawl %s: %w", r.Request.URL, err))
		pc.markFailed(r.Request.URL.String())
	})

	for _, target := range targets {
		if !*dryRun {
			if visit, _ := pc.repoManager.PageVisit.GetByURL(target.UserID, target.URL); visit != nil {
				if err := pc.repoManager.PageVisit.UpdateCrawlStatus(visit.ID, "crawling"); err != nil {
					pc.logger.WithError(err).Warn("Failed to mark page as crawling")
				}
			}
		}
		if err := collector.Visit(target.URL); err != nil {
			pc.logger.WithError(err).WithField("url", target.URL).Warn("Skipping page")
			pc.errors = append(pc.errors, err)
		}
	}

	collector.Wait()
	return nil
}

type crawlTarget struct {
	UserID string
	URL    string
}

// collectTargets merges saved links with stale page visits, capped by
// the page limit. Saved links go first so new bookmarks are indexed
// before refreshes.
func (pc *PageCrawler) collectTargets() ([]crawlTarget, error) {
	seen := make(map[string]bool)
	targets := make([]crawlTarget, 0, *pageLimit)

	links, err := pc.repoManager.SavedLink.GetAll("")
	if err != nil {
		return nil, fmt.Errorf("failed to load saved links: %w", err)
	}
	for _, link := range links {
		if len(targets) >= *pageLimit {
			return targets, nil
		}
		if !seen[link.URL] && strings.HasPrefix(link.URL, "http") {
			seen[link.URL] = true
			targets = append(targets, crawlTarget{UserID: link.UserID, URL: link.URL})
		}
	}

	stale, err := pc.repoManager.PageVisit.GetStale(time.Now().Add(-*staleAfter), *pageLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load stale page visits: %w", err)
	}
	for _, visit := range stale {
		if len(targets) >= *pageLimit {
			break
		}
		if !seen[visit.URL] {
			seen[visit.URL] = true
			targets = append(targets, crawlTarget{UserID: visit.UserID, URL: visit.URL})
		}
	}
	return targets, nil
}

func (pc *PageCrawler) storePage(pageURL, html string) {
	pageCtx := pc.analyzer.AnalyzeHTML(pageURL, html)
	content := pc.processor.CleanContent(pageCtx.Content)

	pc.logger.WithFields(logrus.Fields{
		"url":      pageURL,
		"title":    pageCtx.Title,
		"words":    pc.processor.CountWords(content),
		"headings": len(pageCtx.Headings),
	}).Debug("Extracted page content")

	if *dryRun {
		fmt.Printf("[dry-run] %s — %q (%d chars, %d headings)\n",
			pageURL, pageCtx.Title, len(content), len(pageCtx.Headings))
		pc.crawled++
		return
	}

	visit := &models.PageVisit{
		UserID:       "anonymous",
		URL:          pageURL,
		Title:        pageCtx.Title,
		Content:      content,
		Headings:     models.StringArray(pageCtx.Headings),
		LastVisit:    time.Now(),
		CrawlStatus:  "completed",
		WordCount:    pc.processor.CountWords(content),
		HeadingCount: len(pageCtx.Headings),
	}

	if existing, _ := pc.repoManager.PageVisit.GetByURL(visit.UserID, pageURL); existing != nil {
		visit.UserID = existing.UserID
	}

	if err := pc.repoManager.PageVisit.Upsert(visit); err != nil {
		pc.logger.WithError(err).WithField("url", pageURL).Error("Failed to store page visit")
		pc.errors = append(pc.errors, err)
		return
	}

	if stored, _ := pc.repoManager.PageVisit.GetByURL(visit.UserID, pageURL); stored != nil {
		if err := pc.repoManager.PageVisit.UpdateCrawlStatus(stored.ID, "completed"); err != nil {
			pc.logger.WithError(err).Warn("Failed to update crawl status")
		}
	}

	pc.crawled++
}

func (pc *PageCrawler) markFailed(pageURL string) {
	if *dryRun {
		return
	}
	if visit, _ := pc.repoManager.PageVisit.GetByURL("anonymous", pageURL); visit != nil {
		if err := pc.repoManager.PageVisit.UpdateCrawlStatus(visit.ID, "failed"); err != nil {
			pc.logger.WithError(err).Warn("Failed to update crawl status")
		}
	}
}
