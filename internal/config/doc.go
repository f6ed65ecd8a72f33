// Package config provides configuration parsing for ripple projects.
//
// The configuration is stored in ripple.json (or ripple.yaml) at the
// project root. This package handles loading, saving, and validating
// configuration.
//
// # Configuration File Structure
//
//	{
//	  "name": "counter",
//	  "frameRate": 60,
//	  "maxFlushRounds": 64,
//	  "logLevel": "info",
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "ripple",
//	    "path": "/metrics"
//	  },
//	  "inspector": {
//	    "enabled": true,
//	    "addr": "127.0.0.1:7070"
//	  },
//	  "hydration": {
//	    "reservedPrefix": "data-ripple"
//	  }
//	}
//
// The same keys are used in YAML.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Frame rate:", cfg.FrameRate)
package config
