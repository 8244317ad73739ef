// Package config provides configuration loading for reactor.
//
// Configuration lives in reactor.json (or reactor.yaml / reactor.yml) in
// the working directory. Every field is optional; missing values fall back
// to the defaults returned by New.
//
// # Configuration File Structure
//
//	{
//	  "name": "demo",
//	  "runtime": {
//	    "maxFlushRuns": 10000,
//	    "debug": false
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "telemetry": {
//	    "namespace": "reactor",
//	    "tracerName": "reactor",
//	    "metrics": true,
//	    "tracing": false
//	  },
//	  "inspect": {
//	    "addr": "localhost:7070"
//	  },
//	  "demo": {
//	    "initialLength": 3
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Max flush runs:", cfg.Runtime.MaxFlushRuns)
package config
