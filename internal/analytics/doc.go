// Package analytics produces the eight maize market reports: national
// summary, production summary, price analysis, storage status, seasonal
// pattern, forecast inventory, supply-demand balance and market opportunities.
//
// Every report re-reads its datasets through a Source, filters them against
// the engine clock and returns a typed, pre-rounded result. Optional sections
// are nil and omitted from JSON when the data behind them is unavailable.
package analytics
