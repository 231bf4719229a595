/*
Package client implements common operations to build client-side applications.
These focus on managing the rule catalog and working audits through to
completion.

Below briefly illustrates a simple cycle of creating a client and using it to
perform a few operations.  The first step is to create a new client.

  var conf = Config{
    // Setup certs, engine URL, etc
  }

  client, err := NewClient(conf)
  // err handling

This client can then be used to perform operations in the compliance engine.

 var rule = protocol.CreateRuleRequest{
   RuleCode:    "NEC-110.26",
   Title:       "Working space about electrical equipment",
   Description: "Equipment operating at 600 volts or less must have sufficient working clearance.",
   // etc..
 }

 retRule, err := client.CreateRule(rule)

The return from CreateRule will have the stored rule's properties, which can be
used to facilitate further operations, such as building a checklist over it and
recording outcomes. E.g.

  checklist, err := client.CreateChecklist(protocol.CreateChecklistRequest{
    Name:    "Panel upgrade rough-in",
    RuleIds: []string{retRule.ID},
  })

  // Record the verification outcome on the snapshotted check.
  outcome, err := client.UpdateCheck(checklist.ID, checklist.Checks[0].ID,
    protocol.UpdateCheckRequest{Status: "passed"})

Once every check is off pending, the checklist can be activated.

  activated, err := client.UpdateChecklistStatus(checklist.ID, "active")

*/
package client
