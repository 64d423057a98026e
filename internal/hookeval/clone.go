package hookeval

// Clone returns a deep copy of the transaction, detaching it from the chain
// event that produced it. Trigger entries borrow into the event; cloning is
// only needed when a payload must outlive the pass (the in-process
// occurrence).
func (t Transaction) Clone() Transaction {
	clone := t
	if t.Outputs != nil {
		clone.Outputs = append([]Output(nil), t.Outputs...)
	}
	if t.SideOperations != nil {
		ops := make([]SideOperation, len(t.SideOperations))
		for i, op := range t.SideOperations {
			ops[i] = op.clone()
		}
		clone.SideOperations = ops
	}

	return clone
}

func (op SideOperation) clone() SideOperation {
	clone := op
	if op.Rewards != nil {
		clone.Rewards = append([]RewardRecipient(nil), op.Rewards...)
	}

	return clone
}
