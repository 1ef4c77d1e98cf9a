// Package runtime wires storage, config, and facades into a single-node
// waitline instance. It opens the Pebble database, connects Redis when
// configured, and hands the stores to higher-level services.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	defer rt.Close()
//	_ = rt.CheckHealth(context.Background())
package runtime
