package main

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/gajzzs/devtree/internal/device"
	"github.com/gajzzs/devtree/internal/platform"
)

func main() {
	fmt.Printf("Testing devtree backends on %s\n", runtime.GOOS)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for _, backend := range []string{device.BackendMount, device.BackendADB} {
		fmt.Printf("\n=== Testing %s backend ===\n", backend)
		svc, err := platform.NewDeviceService(platform.Options{Backend: backend, Timeout: 30 * time.Second})
		if err != nil {
			log.Printf("Error creating backend: %v", err)
			continue
		}

		handles, err := device.List(ctx, svc)
		if err != nil {
			log.Printf("Error listing devices: %v", err)
			continue
		}
		fmt.Printf("Found %d devices:\n", len(handles))
		for i, h := range handles {
			fmt.Printf("%d. %s (Path: %s)\n", i+1, h, h.Path)
		}

		if len(handles) == 0 {
			continue
		}
		start := time.Now()
		root, err := device.Read(ctx, svc, handles[0])
		if err != nil {
			log.Printf("Error reading %s: %v", handles[0], err)
			continue
		}
		fmt.Printf("Read %s: root %q with %d top-level entries in %s\n",
			handles[0], root.Name, len(root.Children), time.Since(start).Round(time.Millisecond))
	}
}
