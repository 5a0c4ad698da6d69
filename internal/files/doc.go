// Package files discovers CSV datasets in a data directory.
//
// Discovery is non-recursive and matches the *.csv glob with a
// case-sensitive extension. Missing directories, empty listings and
// missing files are reported as NOT_FOUND errors carrying the resolved
// absolute path:
//
//	listing, err := files.ListCSVFiles("data/raw")
//	if errors.IsNotFound(err) {
//	    // nothing to inspect
//	}
//
//	path, err := files.PickFile("data/raw", "Monday-WorkingHours.pcap_ISCX.csv")
package files
