/*
Package tipjar implements single owner collection boxes.

Anyone can tip a jar. Each tip is moved into the jar custody account and
recorded against the depositor, so that the jar total is always the sum of
all depositor balances and equal to the funds the custody account holds.

Only the jar admin can withdraw. A withdraw sweeps the whole jar to the admin
and zeroes every balance. All ledger changes are staged before the funds are
moved and dropped when the transfer fails, so a jar is never emptied without
the money reaching the admin. Every tip and withdraw is recorded in an
append-only event log.
*/
package tipjar
