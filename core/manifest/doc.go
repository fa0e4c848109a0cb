// Package manifest fetches the list of mods the dedicated server requires.
//
// The server publishes its state as an XML stats feed. Only the first <Mods>
// element is read:
//
//	<Server>
//	  <Mods>
//	    <Mod name="FS25_cropA" author="Someone" version="1.0.0.0" hash="3f2a...">Crop A</Mod>
//	  </Mods>
//	</Server>
//
// Each <Mod> becomes a reconcile.RemoteMod. Entries without a name are
// dropped, and names starting with an excluded prefix (platform DLC, "pdlc_"
// by default) never reach the comparer.
//
// A document without a <Mods> element is a parse failure, not an empty
// manifest, so a misconfigured URL does not mark every local mod as orphaned.
package manifest
