// Package router assembles and runs one node of the onion network.
//
// A node plays exactly one Role:
//   - RoleDirectory keeps the node registry.
//   - RoleRelay holds a key pair and peels layers. On Start it generates its
//     keys, begins listening, then registers with the directory.
//   - RoleUser sends messages through fresh circuits and receives FINAL
//     deliveries into its inbox.
//
// # Usage Example
//
//	r, err := router.CreateRouter(cfg, router.RoleRelay, 2)
//	if err != nil {
//	    return err
//	}
//	if err := r.Start(); err != nil {
//	    return err
//	}
//	r.Wait()
//	r.Close()
package router
