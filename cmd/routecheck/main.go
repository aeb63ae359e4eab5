// Command routecheck submits a route to a running airscout instance and
// prints the risk assessment.
//
//	routecheck -addr http://localhost:8080 -- -87.6298,41.8781 -87.6270,41.8850
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type checkRequest struct {
	Coordinates  [][2]float64 `json:"coordinates"`
	BufferMeters float64      `json:"buffer_meters,omitempty"`
	MinSeverity  int          `json:"min_severity,omitempty"`
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "airscout base URL")
	buffer := flag.Float64("buffer", 0, "corridor width in meters (0 uses the server default)")
	minSeverity := flag.Int("min-severity", 0, "minimum hazard severity (0 uses the server default)")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Parse()

	coordinates, err := parseCoordinates(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, "routecheck:", err)
		os.Exit(2)
	}

	body, err := json.Marshal(checkRequest{
		Coordinates:  coordinates,
		BufferMeters: *buffer,
		MinSeverity:  *minSeverity,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "routecheck:", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: *timeout}
	resp, err := client.Post(strings.TrimRight(*addr, "/")+"/api/routes/check", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintln(os.Stderr, "routecheck:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintln(os.Stderr, "routecheck:", err)
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "", "  "); err != nil {
		pretty.Write(payload)
	}
	fmt.Println(pretty.String())

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}

// parseCoordinates reads "lon,lat" arguments into coordinate pairs.
func parseCoordinates(args []string) ([][2]float64, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("need at least two lon,lat arguments, got %d", len(args))
	}

	coordinates := make([][2]float64, 0, len(args))
	for _, arg := range args {
		parts := strings.Split(arg, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("bad coordinate %q, want lon,lat", arg)
		}

		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad longitude in %q: %w", arg, err)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad latitude in %q: %w", arg, err)
		}

		coordinates = append(coordinates, [2]float64{lon, lat})
	}

	return coordinates, nil
}
