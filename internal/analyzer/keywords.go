package analyzer

import "github.com/abhijeet6401/newslet/internal/domain"

var (
	highImportanceKeywords = []string{
		"fed", "federal reserve", "interest rate", "inflation", "recession",
		"earnings", "ipo", "merger", "acquisition", "bankruptcy", "sec",
		"market crash", "bull market", "bear market", "dividend",
		"stock split", "buyback", "guidance", "outlook",
	}

	mediumImportanceKeywords = []string{
		"revenue", "profit", "loss", "sales", "growth", "decline",
		"investment", "funding", "valuation", "analyst", "upgrade",
		"downgrade", "target price", "recommendation",
	}

	breakingIndicators = []string{"breaking", "urgent", "alert", "just in", "developing"}

	marketIndicators = []string{"dow", "nasdaq", "s&p", "market", "trading", "volume"}

	positiveWords = []string{
		"gain", "gains", "up", "rise", "surge", "jump", "soar", "climb",
		"rally", "boost", "strong", "bullish", "optimistic", "positive",
		"growth", "profit", "beat", "exceed", "outperform",
	}

	negativeWords = []string{
		"fall", "falls", "drop", "decline", "plunge", "crash", "sink",
		"tumble", "slide", "weak", "bearish", "pessimistic", "negative",
		"loss", "miss", "underperform", "concern", "worry", "fear",
	}
)

type categoryRule struct {
	category string
	keywords []string
}

// categoryRules is checked in order; the first rule with any keyword present wins.
var categoryRules = []categoryRule{
	{domain.CategoryMarketNews, []string{"market", "trading", "dow", "nasdaq", "s&p", "index"}},
	{domain.CategoryEarnings, []string{"earnings", "revenue", "profit", "quarterly", "results"}},
	{domain.CategoryEconomic, []string{"gdp", "inflation", "unemployment", "cpi", "ppi"}},
	{domain.CategoryCentralBank, []string{"fed", "federal reserve", "interest rate", "monetary policy"}},
	{domain.CategoryCrypto, []string{"bitcoin", "crypto", "blockchain", "ethereum", "digital currency"}},
	{domain.CategoryCommodities, []string{"oil", "gold", "silver", "commodity", "crude", "natural gas"}},
	{domain.CategoryMergers, []string{"merger", "acquisition", "takeover", "buyout"}},
	{domain.CategoryIPO, []string{"ipo", "initial public offering", "going public", "debut"}},
	{domain.CategoryRegulatory, []string{"sec", "regulation", "compliance", "investigation"}},
}
