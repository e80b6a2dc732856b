package sqlinline

const QSelectDonation = `--sql 8c4486ed-c604-4aa3-baa5-3966f3ad9555
select name, company, donor_identity, contribution_type, posting_date, due_date,
       currency, status, coalesce(donation_cost_center, ''), docstatus, owner, creation, modified
from donations
where name = $1::text;
`

const QListPaymentDetails = `--sql d26f5540-3a20-4c92-97be-c999658661c1
select name::text, idx, coalesce(donor, ''), coalesce(fund_class, ''), coalesce(intention_id, ''),
       coalesce(mode_of_payment, ''),
       donation_amount::float8, deduction_amount::float8, net_amount::float8, outstanding_amount::float8,
       base_donation_amount::float8, base_deduction_amount::float8, base_net_amount::float8,
       base_outstanding_amount::float8
from payment_details
where parent = $1::text
order by idx asc;
`

const QListDeductionBreakeven = `--sql 5a8b73fb-046c-4f8d-bc27-4bd56430f41b
select idx, payment_idx, coalesce(donor, ''), coalesce(fund_class, ''), coalesce(intention_id, ''),
       coalesce(company, ''), account, percentage::float8, min_percent::float8, max_percent::float8,
       amount::float8, base_amount::float8, coalesce(cost_center, ''), coalesce(project, '')
from deduction_breakeven
where parent = $1::text
order by idx asc;
`

const QUpdatePaymentAmounts = `--sql bcf664eb-929e-4915-9d81-10d36d45e00a
update payment_details
set deduction_amount = $3::numeric,
    net_amount = $4::numeric,
    outstanding_amount = $5::numeric,
    base_donation_amount = $6::numeric,
    base_deduction_amount = $7::numeric,
    base_net_amount = $8::numeric,
    base_outstanding_amount = $9::numeric
where parent = $1::text and idx = $2::int;
`

const QDeleteDeductionBreakeven = `--sql a1488301-2660-4e91-9775-ac02476a4c17
delete from deduction_breakeven
where parent = $1::text;
`

const QInsertDeductionBreakeven = `--sql 216caed9-bcca-48b4-aeee-467c69f978a7
insert into deduction_breakeven(
  name, parent, idx, payment_idx, donor, fund_class, intention_id, company, account,
  percentage, min_percent, max_percent, amount, base_amount, cost_center, project
)
values (
  gen_random_uuid(), $1::text, $2::int, $3::int, nullif($4::text, ''), nullif($5::text, ''),
  nullif($6::text, ''), nullif($7::text, ''), $8::text, $9::numeric, $10::numeric, $11::numeric,
  $12::numeric, $13::numeric, nullif($14::text, ''), nullif($15::text, '')
);
`

const QTouchDonation = `--sql b0fd31f3-f412-41ca-8b74-46ce578a75a5
update donations
set modified = now()
where name = $1::text;
`

const QSelectDonationHeader = `--sql 6934e100-2c5d-4eb5-ad04-6bf9c878d3ab
select owner, creation
from donations
where name = $1::text;
`

const QSelectFirstLeafCostCenter = `--sql e1592d45-53f4-42d8-ab54-4ffac22d2ee3
select name
from cost_centers
where not is_group
order by name asc
limit 1;
`

const QInsertDraftDonation = `--sql 25d0b6e7-47f3-4384-8dc6-c3575146e743
insert into donations(
  name, company, donor_identity, contribution_type, posting_date, due_date,
  currency, status, donation_cost_center, docstatus, owner, creation, modified
)
values ($1::text, $2::text, 'Known', 'Donation', current_date, current_date,
        $3::text, 'Draft', nullif($4::text, ''), 0, $5::text, now(), now())
on conflict (name) do nothing;
`

const QEnsureCompany = `--sql d24dff90-a310-4ca0-800e-ef7a7844e03b
insert into companies(name, default_currency)
values ($1::text, $2::text)
on conflict (name) do nothing;
`
