/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package location holds the fixed geographic position the daemon schedules
// for. It is read once at startup and never mutated.
package location

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Location is an immutable latitude/longitude pair in decimal degrees.
type Location struct {
	Lat  float64
	Long float64
}

func (l Location) String() string {
	return fmt.Sprintf("(%g, %g)", l.Lat, l.Long)
}

// ReadFile loads a location from a two-line text file: latitude on the first
// line, longitude on the second, both decimal degrees. Any malformed content
// is an error; callers treat it as fatal at startup.
func ReadFile(path string) (Location, error) {
	f, err := os.Open(path)
	if err != nil {
		return Location{}, fmt.Errorf("open location file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	lat, err := readDegrees(scanner, "latitude")
	if err != nil {
		return Location{}, err
	}
	long, err := readDegrees(scanner, "longitude")
	if err != nil {
		return Location{}, err
	}

	return Location{Lat: lat, Long: long}, nil
}

func readDegrees(scanner *bufio.Scanner, field string) (float64, error) {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return 0, fmt.Errorf("read %s: %w", field, err)
		}
		return 0, fmt.Errorf("read %s: missing line", field)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(scanner.Text()), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", field, err)
	}
	return v, nil
}
