// Package publisher builds, publishes and upgrades Move packages against one
// network.
//
// A Client binds the compiler, the manifest files next to each package, the
// per-network publish state, the ledger and a signer. Publishing writes
// publish-result.<network>.json and Move.<network>.toml next to Move.toml;
// upgrading reads them back so later calls need only the package path.
//
//	client, err := publisher.Open(ctx, publisher.DefaultConfig("testnet"))
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//	result, err := client.Publish(ctx, "./move/coin_flip", publisher.PublishOptions{
//		ResultParser: publisher.CaptureByType(map[string]string{"houseCapId": "house_data::HouseCap"}),
//	})
package publisher
