// Package files discovers dataset and forecast artifacts on disk.
//
// Discovery lists CSV files in a directory and finds the per-region
// forecast series written by the trainer:
//
//	discovery := files.NewDiscovery(paths.BaseDir)
//	series, err := discovery.FindForecastSeries(paths.ProductionForecastDir, "forecast_")
//	for _, slug := range files.SortedKeys(series) {
//	    // validate series[slug].Path
//	}
package files
