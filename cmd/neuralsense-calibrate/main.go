// Command neuralsense-calibrate is an interactive terminal client for
// the control plane's calibration endpoints: pick a zone, stand in it,
// press Enter to stop the capture. It never touches the database or
// the broker directly — it drives the same HTTP API an operator's
// browser would, so it only runs against an already-running
// neuralsense-live instance.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strconv"
	"strings"
)

type zone struct {
	ID int     `json:"ID"`
	X  float64 `json:"X"`
	Y  float64 `json:"Y"`
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "control plane base URL")
	username := flag.String("user", "admin", "control plane username")
	password := flag.String("password", "", "control plane password")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "error: -password is required")
		os.Exit(1)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cookie jar: %v\n", err)
		os.Exit(1)
	}
	client := &http.Client{Jar: jar}

	if err := login(client, *addr, *username, *password); err != nil {
		fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		os.Exit(1)
	}

	zones, err := loadZones(client, *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load zones: %v\n", err)
		os.Exit(1)
	}
	if len(zones) == 0 {
		fmt.Fprintln(os.Stderr, "no zones configured; add rows to the zones CSV first")
		os.Exit(1)
	}

	reader := bufio.NewScanner(os.Stdin)
	for {
		fmt.Println("\nZones:")
		for _, z := range zones {
			fmt.Printf("  %d  (%.1f, %.1f)\n", z.ID, z.X, z.Y)
		}
		fmt.Print("zone id to calibrate (blank to quit): ")
		if !reader.Scan() {
			return
		}
		line := strings.TrimSpace(reader.Text())
		if line == "" {
			return
		}
		zoneID, err := strconv.Atoi(line)
		if err != nil {
			fmt.Println("not a number, try again")
			continue
		}

		if err := startCalibration(client, *addr, zoneID); err != nil {
			fmt.Printf("start failed: %v\n", err)
			continue
		}

		fmt.Println("capturing... stand in the zone and press Enter to stop")
		reader.Scan()

		summary, err := stopCalibration(client, *addr)
		if err != nil {
			fmt.Printf("stop failed: %v\n", err)
			continue
		}
		fmt.Printf("zone %d: %d vectors recorded\n", zoneID, summary)
	}
}

func login(client *http.Client, addr, username, password string) error {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := client.Post(addr+"/api/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func loadZones(client *http.Client, addr string) ([]zone, error) {
	resp, err := client.Get(addr + "/api/zones")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	var zones []zone
	if err := json.NewDecoder(resp.Body).Decode(&zones); err != nil {
		return nil, err
	}
	return zones, nil
}

func startCalibration(client *http.Client, addr string, zoneID int) error {
	body, _ := json.Marshal(map[string]int{"zone_id": zoneID})
	resp, err := client.Post(addr+"/api/calibration/start", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func stopCalibration(client *http.Client, addr string) (int, error) {
	resp, err := client.Post(addr+"/api/calibration/stop", "application/json", nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("status %d", resp.StatusCode)
	}
	var out struct {
		VectorsCollected int `json:"vectors_collected"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.VectorsCollected, nil
}
